package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campusnet/internal/common"
	"campusnet/internal/task"
	"campusnet/internal/testutil"
)

type verifierMock struct {
	mock.Mock
}

func (m *verifierMock) Verify(ctx context.Context, req Request) (Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Result), args.Error(1)
}

type recorderMock struct {
	mock.Mock
}

func (m *recorderMock) SetVerificationStatus(ctx context.Context, userID, status string) error {
	return m.Called(ctx, userID, status).Error(0)
}

func newService(v Verifier, r StatusRecorder) *Service {
	return NewService(v, r, common.ContextIdentity{}, task.NewTracker(nil), nil)
}

func viewerCtx(id string) context.Context {
	return common.WithViewer(context.Background(), id)
}

func TestSubmit_RecordsStatus(t *testing.T) {
	v := new(verifierMock)
	rec := new(recorderMock)
	v.On("Verify", mock.Anything, Request{
		DocumentPath:  "u1/id.png",
		UserID:        "u1",
		UserType:      UserTypeCurrent,
		ProvidedEmail: "asha@iitd.ac.in",
	}).Return(Result{Success: true, Status: "verified", MatchScore: 80}, nil)
	rec.On("SetVerificationStatus", mock.Anything, "u1", "verified").Return(nil)

	res, err := newService(v, rec).Submit(viewerCtx("u1"), SubmitInput{
		UserType:     UserTypeCurrent,
		Email:        " asha@iitd.ac.in ",
		DocumentPath: "u1/id.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "verified", res.Status)
	v.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestSubmit_Validation(t *testing.T) {
	s := newService(new(verifierMock), new(recorderMock))

	_, err := s.Submit(context.Background(), SubmitInput{UserType: UserTypeOld, Email: "a@b.in"})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	cases := []SubmitInput{
		{UserType: "alumni", Email: "a@iitd.ac.in", DocumentPath: "d"},
		{UserType: UserTypeCurrent, Email: "asha@gmail.com", DocumentPath: "d"},
		{UserType: UserTypeCurrent, Email: "asha@iitd.ac.in"},
		{UserType: UserTypeOld},
	}
	for _, in := range cases {
		_, err := s.Submit(viewerCtx("u1"), in)
		assert.ErrorIs(t, err, common.ErrValidationFailed, "%+v", in)
	}
}

func TestSubmit_Failures(t *testing.T) {
	in := SubmitInput{UserType: UserTypeOld, DocumentPath: "u1/marksheet.pdf"}

	t.Run("rejected", func(t *testing.T) {
		v := new(verifierMock)
		v.On("Verify", mock.Anything, mock.Anything).Return(Result{}, ErrRejected)
		_, err := newService(v, new(recorderMock)).Submit(viewerCtx("u1"), in)
		assert.ErrorIs(t, err, common.ErrValidationFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		v := new(verifierMock)
		v.On("Verify", mock.Anything, mock.Anything).Return(Result{}, errors.New("dial tcp: refused"))
		_, err := newService(v, new(recorderMock)).Submit(viewerCtx("u1"), in)
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})

	t.Run("unknown status", func(t *testing.T) {
		v := new(verifierMock)
		rec := new(recorderMock)
		v.On("Verify", mock.Anything, mock.Anything).Return(Result{Success: true, Status: "approved"}, nil)
		_, err := newService(v, rec).Submit(viewerCtx("u1"), in)
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
		rec.AssertNotCalled(t, "SetVerificationStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("profile write fails", func(t *testing.T) {
		v := new(verifierMock)
		rec := new(recorderMock)
		v.On("Verify", mock.Anything, mock.Anything).Return(Result{Status: "pending"}, nil)
		rec.On("SetVerificationStatus", mock.Anything, "u1", "pending").
			Return(common.StoreError("user.verification_status", errors.New("db down")))
		_, err := newService(v, rec).Submit(viewerCtx("u1"), in)
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})
}

func TestHandler_Submit(t *testing.T) {
	v := new(verifierMock)
	rec := new(recorderMock)
	v.On("Verify", mock.Anything, mock.Anything).Return(Result{Success: true, Status: "limited_access", MatchScore: 40}, nil)
	rec.On("SetVerificationStatus", mock.Anything, "u1", "limited_access").Return(nil)

	r := mux.NewRouter()
	r.Use(testutil.ViewerHeader)
	NewHandler(newService(v, rec), nil).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/verification",
		strings.NewReader(`{"user_type":"old","document_path":"u1/marksheet.pdf"}`))
	req.Header.Set("X-Viewer", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"status":"limited_access","match_score":40}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/verification/in-progress", nil)
	req.Header.Set("X-Viewer", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"in_progress":false}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/verification", strings.NewReader(`{"user_type":"old"}`))
	req.Header.Set("X-Viewer", "u1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
