package realtime

import (
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"campusnet/internal/logging"
)

// GormPlugin turns successful creates, updates and deletes into change events.
// Deletes only carry the columns present on the value passed to Delete, so
// callers that need filterable deletes pass the loaded row.
type GormPlugin struct {
	pub    Publisher
	origin string
	tables map[string]bool
	now    func() time.Time
	log    *zap.Logger
}

// NewGormPlugin publishes changes for the given tables, or for every table when none are named.
func NewGormPlugin(pub Publisher, origin string, log *zap.Logger, tables ...string) *GormPlugin {
	p := &GormPlugin{
		pub:    pub,
		origin: origin,
		now:    func() time.Time { return time.Now().UTC() },
		log:    logging.OrNop(log),
	}
	if len(tables) > 0 {
		p.tables = make(map[string]bool, len(tables))
		for _, t := range tables {
			p.tables[t] = true
		}
	}
	return p
}

func (p *GormPlugin) Name() string {
	return "campusnet:realtime"
}

// commitCallback is GORM's last step; events go out only once the row is
// visible to other connections.
const commitCallback = "gorm:commit_or_rollback_transaction"

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().After(commitCallback).Register("realtime:after_create", p.emit(Insert)); err != nil {
		return err
	}
	if err := db.Callback().Update().After(commitCallback).Register("realtime:after_update", p.emit(Update)); err != nil {
		return err
	}
	return db.Callback().Delete().After(commitCallback).Register("realtime:after_delete", p.emit(Delete))
}

func (p *GormPlugin) emit(t EventType) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.Statement.Schema == nil || db.RowsAffected == 0 {
			return
		}
		table := db.Statement.Table
		if p.tables != nil && !p.tables[table] {
			return
		}

		for _, rec := range p.records(db) {
			if t == Update {
				if m, ok := db.Statement.Dest.(map[string]interface{}); ok {
					for k, v := range m {
						rec[k] = v
					}
				}
			}
			p.pub.Publish(Event{Table: table, Type: t, Record: rec, Origin: p.origin, At: p.now()})
		}
	}
}

func (p *GormPlugin) records(db *gorm.DB) []map[string]any {
	stmt := db.Statement
	rv := reflect.Indirect(stmt.ReflectValue)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]map[string]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rowValues(stmt, stmt.Schema, reflect.Indirect(rv.Index(i))))
		}
		return out
	case reflect.Struct:
		return []map[string]any{rowValues(stmt, stmt.Schema, rv)}
	}
	p.log.Debug("realtime: unsupported statement value", zap.String("table", stmt.Table))
	return nil
}

func rowValues(stmt *gorm.Statement, s *schema.Schema, rv reflect.Value) map[string]any {
	rec := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		v, _ := f.ValueOf(stmt.Context, rv)
		rec[f.DBName] = deref(v)
	}
	return rec
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
