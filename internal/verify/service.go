package verify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/logging"
	"campusnet/internal/metrics"
	"campusnet/internal/task"
	"campusnet/internal/user"
)

const (
	UserTypeCurrent = "current"
	UserTypeOld     = "old"
)

// StatusRecorder persists a user's verification status.
type StatusRecorder interface {
	SetVerificationStatus(ctx context.Context, userID, status string) error
}

// SubmitInput is what the verification form sends.
type SubmitInput struct {
	UserType     string `json:"user_type"`
	Email        string `json:"email"`
	DocumentPath string `json:"document_path"`
}

type Service struct {
	verifier Verifier
	users    StatusRecorder
	identity common.Identity
	tracker  *task.Tracker
	log      *zap.Logger
}

func NewService(verifier Verifier, users StatusRecorder, identity common.Identity, tracker *task.Tracker, log *zap.Logger) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		identity: identity,
		tracker:  tracker,
		log:      logging.OrNop(log),
	}
}

func taskKey(viewerID string) string {
	return "verify:" + viewerID
}

func (in SubmitInput) validate(op string) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch in.UserType {
	case UserTypeCurrent:
		// Current students must use their college address.
		if email == "" || !strings.Contains(email, "@") || strings.HasSuffix(email, "@gmail.com") {
			return common.Errorf(common.KindValidationFailed, op, "current students must use a college email address")
		}
		if strings.TrimSpace(in.DocumentPath) == "" {
			return common.Errorf(common.KindValidationFailed, op, "a verification document is required")
		}
	case UserTypeOld:
		if strings.TrimSpace(in.DocumentPath) == "" && email == "" {
			return common.Errorf(common.KindValidationFailed, op, "a document or college email is required")
		}
	default:
		return common.Errorf(common.KindValidationFailed, op, "unknown user type %q", in.UserType)
	}
	return nil
}

// Submit sends the viewer's document for checking and stores the resulting
// status. The check keeps running if ctx is cancelled.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Result, error) {
	const op = "verify.Submit"
	viewer, err := common.RequireViewer(ctx, s.identity, op)
	if err != nil {
		return Result{}, err
	}
	if err := in.validate(op); err != nil {
		return Result{}, err
	}
	if s.tracker.InProgress(taskKey(viewer)) {
		return Result{}, common.Errorf(common.KindValidationFailed, op, "a verification is already in progress")
	}

	var result Result
	done := s.tracker.Go(ctx, taskKey(viewer), func(ctx context.Context) error {
		res, err := s.verifier.Verify(ctx, Request{
			DocumentPath:  strings.TrimSpace(in.DocumentPath),
			UserID:        viewer,
			UserType:      in.UserType,
			ProvidedEmail: strings.TrimSpace(in.Email),
		})
		if err != nil {
			metrics.VerificationRequests.WithLabelValues("error").Inc()
			return err
		}
		if !validStatus(res.Status) {
			metrics.VerificationRequests.WithLabelValues("invalid").Inc()
			return common.Errorf(common.KindStoreUnavailable, op, "verification returned unknown status %q", res.Status)
		}
		metrics.VerificationRequests.WithLabelValues(res.Status).Inc()

		if err := s.users.SetVerificationStatus(ctx, viewer, res.Status); err != nil {
			return err
		}
		result = res
		return nil
	})

	select {
	case err := <-done:
		if err != nil {
			return Result{}, classify(op, err)
		}
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	s.log.Info("verification finished",
		zap.String("user", viewer),
		zap.String("status", result.Status),
		zap.Int("match_score", result.MatchScore))
	return result, nil
}

// InProgress reports whether the viewer has a verification running.
func (s *Service) InProgress(ctx context.Context) (bool, error) {
	viewer, err := common.RequireViewer(ctx, s.identity, "verify.InProgress")
	if err != nil {
		return false, err
	}
	return s.tracker.InProgress(taskKey(viewer)), nil
}

func validStatus(status string) bool {
	switch status {
	case user.VerificationVerified, user.VerificationLimitedAccess, user.VerificationPending:
		return true
	}
	return false
}

func classify(op string, err error) error {
	if common.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, ErrRejected) {
		return common.E(common.KindValidationFailed, op, err)
	}
	// Transport failures and an open breaker alike.
	return common.E(common.KindStoreUnavailable, op, err)
}
