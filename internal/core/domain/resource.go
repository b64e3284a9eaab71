package domain

type ResourceType string

const (
	ResourceShow          ResourceType = "show"
	ResourceEpisode       ResourceType = "episode"
	ResourceFavorite      ResourceType = "favorite"
	ResourceUserAccount   ResourceType = "user_account"
	ResourceUserJoinStats ResourceType = "user_join_stats"
	ResourceIncomeStats   ResourceType = "income_stats"
	ResourcePromotion     ResourceType = "promotion"
	ResourceOffer         ResourceType = "offer"
	ResourceSubscription  ResourceType = "subscription"
)

type Verb string

const (
	VerbRead   Verb = "read"
	VerbList   Verb = "list"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbToggle Verb = "toggle"
	VerbManage Verb = "manage"
)

// Action is what a caller asks to do. Target fields are filled from storage
// when the action touches an existing owned resource.
type Action struct {
	Resource               ResourceType
	Verb                   Verb
	TargetOwnerPublisherID *int64
	TargetSubjectID        *int64
}

func (a Action) String() string {
	return string(a.Resource) + ":" + string(a.Verb)
}

// Target carries the ownership facts of an existing resource.
type Target struct {
	OwnerPublisherID *int64
	SubjectID        *int64
}

type ScopeKind string

const (
	ScopeAny     ScopeKind = "any"
	ScopeOwnedBy ScopeKind = "owned_by"
	ScopeSelf    ScopeKind = "self"
)

// Scope restricts an allowed action. It is derived per request and never stored.
type Scope struct {
	Kind        ScopeKind
	PublisherID int64
	SubjectID   int64
}

func AnyScope() Scope { return Scope{Kind: ScopeAny} }

func OwnedBy(publisherID int64) Scope {
	return Scope{Kind: ScopeOwnedBy, PublisherID: publisherID}
}

func SelfScope(subjectID int64) Scope {
	return Scope{Kind: ScopeSelf, SubjectID: subjectID}
}

type DenyReason string

const (
	DenyWrongRole    DenyReason = "wrong_role"
	DenyWrongSubtype DenyReason = "wrong_subtype"
	DenyNotOwner     DenyReason = "not_owner"
	DenyNoSuchRule   DenyReason = "no_such_rule"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Scope   Scope
	Reason  DenyReason
}

func Allow(scope Scope) Decision {
	return Decision{Allowed: true, Scope: scope}
}

func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}
