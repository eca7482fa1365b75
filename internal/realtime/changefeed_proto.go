package realtime

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// The change feed messages are declared here over the well-known Struct and
// Timestamp types and travel with gRPC's default proto codec:
//
//	message WatchRequest {
//	  string table = 1;
//	  repeated string events = 2;
//	  string column = 3;
//	  string value = 4;
//	}
//
//	message ChangeEvent {
//	  string table = 1;
//	  string type = 2;
//	  google.protobuf.Struct record = 3;
//	  string origin = 4;
//	  google.protobuf.Timestamp at = 5;
//	}
var (
	watchRequestDesc protoreflect.MessageDescriptor
	changeEventDesc  protoreflect.MessageDescriptor
)

func init() {
	file, err := protodesc.NewFile(changeFeedFile(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("realtime: build change feed descriptor: %v", err))
	}
	watchRequestDesc = file.Messages().ByName("WatchRequest")
	changeEventDesc = file.Messages().ByName("ChangeEvent")
}

func changeFeedFile() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
		str      = descriptorpb.FieldDescriptorProto_TYPE_STRING
		msg      = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("campusnet/realtime/v1/changefeed.proto"),
		Package: proto.String("campusnet.realtime.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/struct.proto",
			"google/protobuf/timestamp.proto",
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("WatchRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					protoField("table", 1, optional, str, ""),
					protoField("events", 2, repeated, str, ""),
					protoField("column", 3, optional, str, ""),
					protoField("value", 4, optional, str, ""),
				},
			},
			{
				Name: proto.String("ChangeEvent"),
				Field: []*descriptorpb.FieldDescriptorProto{
					protoField("table", 1, optional, str, ""),
					protoField("type", 2, optional, str, ""),
					protoField("record", 3, optional, msg, ".google.protobuf.Struct"),
					protoField("origin", 4, optional, str, ""),
					protoField("at", 5, optional, msg, ".google.protobuf.Timestamp"),
				},
			},
		},
	}
}

func protoField(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func encodeWatchRequest(req *WatchRequest) *dynamicpb.Message {
	m := dynamicpb.NewMessage(watchRequestDesc)
	fields := watchRequestDesc.Fields()
	m.Set(fields.ByName("table"), protoreflect.ValueOfString(req.Table))
	events := m.Mutable(fields.ByName("events")).List()
	for _, t := range req.Filter.Events {
		events.Append(protoreflect.ValueOfString(string(t)))
	}
	m.Set(fields.ByName("column"), protoreflect.ValueOfString(req.Filter.Column))
	m.Set(fields.ByName("value"), protoreflect.ValueOfString(req.Filter.Value))
	return m
}

func decodeWatchRequest(m *dynamicpb.Message) *WatchRequest {
	fields := watchRequestDesc.Fields()
	req := &WatchRequest{
		Table: m.Get(fields.ByName("table")).String(),
		Filter: Filter{
			Column: m.Get(fields.ByName("column")).String(),
			Value:  m.Get(fields.ByName("value")).String(),
		},
	}
	events := m.Get(fields.ByName("events")).List()
	for i := 0; i < events.Len(); i++ {
		req.Filter.Events = append(req.Filter.Events, EventType(events.Get(i).String()))
	}
	return req
}

// encodeEvent converts a hub event for the wire. Record values go through
// JSON first so times, decimals and JSON columns become Struct-friendly.
func encodeEvent(e Event) (*dynamicpb.Message, error) {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	record, err := structpb.NewStruct(plain)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	m := dynamicpb.NewMessage(changeEventDesc)
	fields := changeEventDesc.Fields()
	m.Set(fields.ByName("table"), protoreflect.ValueOfString(e.Table))
	m.Set(fields.ByName("type"), protoreflect.ValueOfString(string(e.Type)))
	m.Set(fields.ByName("record"), protoreflect.ValueOfMessage(record.ProtoReflect()))
	m.Set(fields.ByName("origin"), protoreflect.ValueOfString(e.Origin))
	if !e.At.IsZero() {
		m.Set(fields.ByName("at"), protoreflect.ValueOfMessage(timestamppb.New(e.At).ProtoReflect()))
	}
	return m, nil
}

func decodeEvent(m *dynamicpb.Message) (Event, error) {
	fields := changeEventDesc.Fields()
	e := Event{
		Table:  m.Get(fields.ByName("table")).String(),
		Type:   EventType(m.Get(fields.ByName("type")).String()),
		Origin: m.Get(fields.ByName("origin")).String(),
	}
	if fd := fields.ByName("record"); m.Has(fd) {
		record := new(structpb.Struct)
		if err := convertMessage(m.Get(fd).Message(), record); err != nil {
			return Event{}, fmt.Errorf("decode record: %w", err)
		}
		e.Record = record.AsMap()
	}
	if fd := fields.ByName("at"); m.Has(fd) {
		at := new(timestamppb.Timestamp)
		if err := convertMessage(m.Get(fd).Message(), at); err != nil {
			return Event{}, fmt.Errorf("decode timestamp: %w", err)
		}
		e.At = at.AsTime()
	}
	return e, nil
}

// convertMessage copies a dynamically decoded message into its generated type.
func convertMessage(src protoreflect.Message, dst proto.Message) error {
	b, err := proto.Marshal(src.Interface())
	if err != nil {
		return err
	}
	return proto.Unmarshal(b, dst)
}
