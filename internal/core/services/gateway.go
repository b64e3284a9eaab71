package services

import (
	"context"
	"errors"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	apperrors "reelhub/pkg/errors"
	"reelhub/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExecuteFunc runs the underlying operation once the caller is verified,
// authorized and the payload is valid. Scope is the grant to apply.
type ExecuteFunc func(ctx context.Context, claims *domain.ClaimSet, scope domain.Scope) (interface{}, error)

type GatewayRequest struct {
	Action domain.Action
	// TargetKind names the existing resource looked up by ResolveTarget. It
	// defaults to the action resource and is what a hidden target is reported as.
	TargetKind    domain.ResourceType
	ResolveTarget func(ctx context.Context) (domain.Target, error)
	// ReadPayload fills Submission from the request body. It runs only for
	// admitted callers, right before validation.
	ReadPayload func(ctx context.Context) error
	Submission  domain.Submission
	Execute       ExecuteFunc
}

type Gateway struct {
	codec     ports.ClaimsCodec
	policy    ports.PolicyEngine
	validator *SubmissionValidator
	metrics   ports.MetricsRecorder
	logger    *zap.SugaredLogger
}

func NewGateway(
	codec ports.ClaimsCodec,
	policy ports.PolicyEngine,
	validator *SubmissionValidator,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) *Gateway {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &Gateway{
		codec:     codec,
		policy:    policy,
		validator: validator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Authenticate verifies a credential without authorizing anything.
func (g *Gateway) Authenticate(credential string) (*domain.ClaimSet, error) {
	claims, err := g.codec.Verify(credential)
	if err != nil {
		return nil, unauthenticated(err)
	}
	return claims, nil
}

// Handle runs a protected operation: verify, resolve the target, authorize,
// read and validate the submission, execute. Every failure is an *apperrors.AppError.
func (g *Gateway) Handle(ctx context.Context, credential string, req GatewayRequest) (interface{}, error) {
	resource, verb := string(req.Action.Resource), string(req.Action.Verb)
	ctx, span := tracing.TraceGateway(ctx, resource, verb)
	defer span.End()

	result, outcome, err := g.handle(ctx, credential, req)

	span.SetAttributes(tracing.DecisionKey.String(outcome))
	if err != nil {
		tracing.RecordError(ctx, err)
	}
	g.metrics.RecordGatewayOutcome(resource, verb, outcome)
	return result, err
}

func (g *Gateway) handle(ctx context.Context, credential string, req GatewayRequest) (interface{}, string, error) {
	claims, err := g.codec.Verify(credential)
	if err != nil {
		g.logger.Debugw("Credential rejected", "action", req.Action.String(), "error", err)
		return nil, "unauthenticated", unauthenticated(err)
	}
	tracing.AddSpanAttributes(ctx,
		tracing.SubjectIDKey.Int64(claims.SubjectID),
		tracing.RoleKey.String(string(claims.Role.Kind())),
	)

	action := req.Action
	targetKind := req.TargetKind
	if targetKind == "" {
		targetKind = action.Resource
	}

	targetMissing := false
	if req.ResolveTarget != nil {
		target, err := req.ResolveTarget(ctx)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			targetMissing = true
		case err != nil:
			g.logger.Errorw("Failed to resolve target",
				"action", action.String(),
				"subject_id", claims.SubjectID,
				"error", err,
			)
			return nil, "upstream", apperrors.NewUpstreamError(err)
		default:
			if target.OwnerPublisherID != nil {
				action.TargetOwnerPublisherID = target.OwnerPublisherID
			}
			if target.SubjectID != nil {
				action.TargetSubjectID = target.SubjectID
			}
		}
	}

	decision := g.policy.Authorize(claims, action)
	if !decision.Allowed {
		g.logger.Infow("Access denied",
			"action", action.String(),
			"subject_id", claims.SubjectID,
			"role", claims.Role.Kind(),
			"reason", decision.Reason,
		)
		// A non-owner sees exactly what a caller probing a missing resource sees.
		if decision.Reason == domain.DenyNotOwner {
			return nil, "not_found", apperrors.NewNotFoundError(string(targetKind))
		}
		return nil, "forbidden", apperrors.NewForbiddenError("access denied")
	}
	if targetMissing {
		return nil, "not_found", apperrors.NewNotFoundError(string(targetKind))
	}

	if req.ReadPayload != nil {
		if err := req.ReadPayload(ctx); err != nil {
			appErr := mapExecuteError(err, targetKind)
			return nil, outcomeFor(appErr.Code), appErr
		}
	}

	if req.Submission != nil {
		if err := g.validator.Validate(req.Submission); err != nil {
			return nil, "invalid_input", apperrors.NewInvalidInputError(err.Error())
		}
	}

	if req.Execute == nil {
		return nil, "allowed", nil
	}

	result, err := req.Execute(ctx, claims, decision.Scope)
	if err != nil {
		appErr := mapExecuteError(err, targetKind)
		if appErr.Code == apperrors.ErrCodeUpstream {
			g.logger.Errorw("Protected operation failed",
				"action", action.String(),
				"subject_id", claims.SubjectID,
				"error", err,
			)
		}
		return nil, outcomeFor(appErr.Code), appErr
	}

	tracing.AddSpanAttributes(ctx, attribute.String("authz.scope", string(decision.Scope.Kind)))
	return result, "allowed", nil
}

func unauthenticated(err error) *apperrors.AppError {
	msg := "invalid credential"
	if errors.Is(err, ErrExpired) {
		msg = "credential expired"
	}
	return apperrors.NewUnauthenticatedError(msg).WithCause(err)
}

// mapExecuteError turns a storage or service failure into the error taxonomy.
func mapExecuteError(err error, targetKind domain.ResourceType) *apperrors.AppError {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrShowNotFound):
		return apperrors.NewNotFoundError(string(domain.ResourceShow))
	case errors.Is(err, domain.ErrEpisodeNotFound):
		return apperrors.NewNotFoundError(string(domain.ResourceEpisode))
	case errors.Is(err, domain.ErrAccountNotFound):
		return apperrors.NewNotFoundError("account")
	case errors.Is(err, domain.ErrCampaignNotFound):
		return apperrors.NewNotFoundError("campaign")
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFoundError(string(targetKind))
	case errors.Is(err, ErrInvalidSubmission):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrScopeMismatch):
		return apperrors.NewForbiddenError("access denied")
	case errors.Is(err, domain.ErrAlreadyExists):
		return apperrors.NewConflictError("resource already exists")
	default:
		return apperrors.NewUpstreamError(err)
	}
}

func outcomeFor(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrCodeNotFound:
		return "not_found"
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidWindow:
		return "invalid_input"
	case apperrors.ErrCodeForbidden:
		return "forbidden"
	case apperrors.ErrCodeConflict:
		return "conflict"
	default:
		return "upstream"
	}
}
