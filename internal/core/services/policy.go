package services

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"go.uber.org/zap"
)

//go:embed authz_model.conf
var embeddedModel string

//go:embed authz_policy.csv
var embeddedPolicy string

type PolicyConfig struct {
	// PolicyPath points at an optional CSV of extra administrator grants,
	// loaded on top of the embedded defaults.
	PolicyPath string
}

// verbScopes maps the verbs a non-admin role may use on a resource to the
// kind of scope the grant carries.
type verbScopes map[domain.ResourceType]map[domain.Verb]domain.ScopeKind

var endUserRules = verbScopes{
	domain.ResourceShow: {
		domain.VerbRead: domain.ScopeAny,
		domain.VerbList: domain.ScopeAny,
	},
	domain.ResourceEpisode: {
		domain.VerbRead: domain.ScopeAny,
		domain.VerbList: domain.ScopeAny,
	},
	domain.ResourceFavorite: {
		domain.VerbToggle: domain.ScopeSelf,
		domain.VerbRead:   domain.ScopeSelf,
		domain.VerbList:   domain.ScopeSelf,
	},
	domain.ResourceSubscription: {
		domain.VerbRead:   domain.ScopeSelf,
		domain.VerbCreate: domain.ScopeSelf,
		domain.VerbList:   domain.ScopeSelf,
	},
}

var publisherRules = verbScopes{
	domain.ResourceShow: {
		domain.VerbRead:   domain.ScopeOwnedBy,
		domain.VerbList:   domain.ScopeOwnedBy,
		domain.VerbCreate: domain.ScopeOwnedBy,
		domain.VerbUpdate: domain.ScopeOwnedBy,
	},
	domain.ResourceEpisode: {
		domain.VerbRead:   domain.ScopeOwnedBy,
		domain.VerbList:   domain.ScopeOwnedBy,
		domain.VerbCreate: domain.ScopeOwnedBy,
		domain.VerbUpdate: domain.ScopeOwnedBy,
	},
}

func (r verbScopes) lookup(resource domain.ResourceType, verb domain.Verb) (domain.ScopeKind, bool) {
	verbs, ok := r[resource]
	if !ok {
		return "", false
	}
	kind, ok := verbs[verb]
	return kind, ok
}

type policyEngine struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.SugaredLogger
}

func NewPolicyEngine(cfg PolicyConfig, logger *zap.SugaredLogger) (ports.PolicyEngine, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authz model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, err := os.Stat(cfg.PolicyPath); err != nil {
			return nil, fmt.Errorf("failed to read authz policy %s: %w", cfg.PolicyPath, err)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create authz enforcer: %w", err)
	}
	if err := checkPolicyShape(enforcer); err != nil {
		return nil, fmt.Errorf("invalid authz policy %s: %w", cfg.PolicyPath, err)
	}
	if cfg.PolicyPath != "" {
		logger.Infow("Loaded extra authorization grants", "path", cfg.PolicyPath)
	}

	// The defaults are added in memory only; the grants file is never rewritten.
	enforcer.EnableAutoSave(false)
	if err := loadPolicyLines(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &policyEngine{
		enforcer: enforcer,
		logger:   logger,
	}, nil
}

// checkPolicyShape rejects rules loaded from a grants file that do not fit the
// model: p rules take subject, resource and verb, g rules a subject and a group.
func checkPolicyShape(enforcer *casbin.SyncedEnforcer) error {
	policies, err := enforcer.GetPolicy()
	if err != nil {
		return err
	}
	for _, rule := range policies {
		if len(rule) != 3 || slices.Contains(rule, "") {
			return fmt.Errorf("policy rule %v must name subject, resource and verb", rule)
		}
	}
	groupings, err := enforcer.GetGroupingPolicy()
	if err != nil {
		return err
	}
	for _, rule := range groupings {
		if len(rule) != 2 || slices.Contains(rule, "") {
			return fmt.Errorf("grouping rule %v must name subject and group", rule)
		}
	}
	return nil
}

// loadPolicyLines adds the embedded default grants.
func loadPolicyLines(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) != 4 {
				return fmt.Errorf("invalid policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if len(parts) != 3 {
				return fmt.Errorf("invalid grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("unknown policy type in line %q", line)
		}
	}
	return nil
}

func adminSubject(subtype domain.AdminSubtype) string {
	return "admin:" + string(subtype)
}

func (e *policyEngine) Authorize(claims *domain.ClaimSet, action domain.Action) domain.Decision {
	if claims == nil {
		return domain.Deny(domain.DenyNoSuchRule)
	}

	switch role := claims.Role.(type) {
	case domain.EndUser:
		return e.authorizeEndUser(claims.SubjectID, action)
	case domain.Publisher:
		return e.authorizePublisher(role.PublisherID, action)
	case domain.Admin:
		return e.authorizeAdmin(role.Subtype, action)
	default:
		return domain.Deny(domain.DenyNoSuchRule)
	}
}

func (e *policyEngine) authorizeEndUser(subjectID int64, action domain.Action) domain.Decision {
	kind, ok := endUserRules.lookup(action.Resource, action.Verb)
	if !ok {
		return domain.Deny(e.missReason(domain.RoleKindEndUser, action))
	}

	if kind == domain.ScopeSelf {
		if action.TargetSubjectID != nil && *action.TargetSubjectID != subjectID {
			return domain.Deny(domain.DenyNotOwner)
		}
		return domain.Allow(domain.SelfScope(subjectID))
	}
	return domain.Allow(domain.AnyScope())
}

func (e *policyEngine) authorizePublisher(publisherID int64, action domain.Action) domain.Decision {
	if _, ok := publisherRules.lookup(action.Resource, action.Verb); !ok {
		return domain.Deny(e.missReason(domain.RoleKindPublisher, action))
	}

	owner := action.TargetOwnerPublisherID
	switch action.Verb {
	case domain.VerbRead, domain.VerbUpdate:
		// Existing resources only: without a known owner there is nothing to match.
		if owner == nil || *owner != publisherID {
			return domain.Deny(domain.DenyNotOwner)
		}
	default:
		if owner != nil && *owner != publisherID {
			return domain.Deny(domain.DenyNotOwner)
		}
	}
	return domain.Allow(domain.OwnedBy(publisherID))
}

func (e *policyEngine) authorizeAdmin(subtype domain.AdminSubtype, action domain.Action) domain.Decision {
	if e.enforce(adminSubject(subtype), action) {
		return domain.Allow(domain.AnyScope())
	}
	return domain.Deny(e.missReason(domain.RoleKindAdmin, action))
}

func (e *policyEngine) enforce(subject string, action domain.Action) bool {
	allowed, err := e.enforcer.Enforce(subject, string(action.Resource), string(action.Verb))
	if err != nil {
		e.logger.Errorw("Authorization enforcement failed",
			"subject", subject,
			"action", action.String(),
			"error", err,
		)
		return false
	}
	return allowed
}

// missReason explains a denial for a role that has no rule for the action:
// another admin subtype, then another role, then nobody.
func (e *policyEngine) missReason(kind domain.RoleKind, action domain.Action) domain.DenyReason {
	if kind == domain.RoleKindAdmin {
		for _, st := range domain.AdminSubtypes {
			if e.enforce(adminSubject(st), action) {
				return domain.DenyWrongSubtype
			}
		}
	}

	if kind != domain.RoleKindEndUser {
		if _, ok := endUserRules.lookup(action.Resource, action.Verb); ok {
			return domain.DenyWrongRole
		}
	}
	if kind != domain.RoleKindPublisher {
		if _, ok := publisherRules.lookup(action.Resource, action.Verb); ok {
			return domain.DenyWrongRole
		}
	}
	if kind != domain.RoleKindAdmin {
		for _, st := range domain.AdminSubtypes {
			if e.enforce(adminSubject(st), action) {
				return domain.DenyWrongRole
			}
		}
	}
	return domain.DenyNoSuchRule
}
