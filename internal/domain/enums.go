// Package domain defines the core domain models for the query engine.
package domain

// EntityKind identifies a category of domain entity tracked in queries.
type EntityKind string

const (
	EntityKindDriver  EntityKind = "driver"
	EntityKindTeam    EntityKind = "team"
	EntityKindCircuit EntityKind = "circuit"
)

// EntityKinds lists all kinds in stable declaration order.
var EntityKinds = []EntityKind{EntityKindDriver, EntityKindTeam, EntityKindCircuit}

// Complexity buckets a query's estimated difficulty.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// QueryTag classifies the intent of a query.
type QueryTag string

const (
	QueryTagComparison  QueryTag = "comparison"
	QueryTagPrediction  QueryTag = "prediction"
	QueryTagHistorical  QueryTag = "historical"
	QueryTagStatistical QueryTag = "statistical"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConfirmationStatus represents the status of a confirmation request.
type ConfirmationStatus string

const (
	ConfirmationStatusPending  ConfirmationStatus = "PENDING"
	ConfirmationStatusResolved ConfirmationStatus = "RESOLVED"
	ConfirmationStatusExpired  ConfirmationStatus = "EXPIRED"
)

// ConfirmationReason classifies why a tentative result needs human review.
type ConfirmationReason string

const (
	ReasonLowConfidence         ConfirmationReason = "low_confidence"
	ReasonComplexQuery          ConfirmationReason = "complex_query"
	ReasonMultiCapability       ConfirmationReason = "multi_capability"
	ReasonSensitiveContent      ConfirmationReason = "sensitive_content"
	ReasonVerificationRequested ConfirmationReason = "verification_requested"
	ReasonSeasonGap             ConfirmationReason = "season_gap"
)

// ResolveAction is a human decision on a confirmation request.
type ResolveAction string

const (
	ResolveActionConfirm     ResolveAction = "confirm"
	ResolveActionRefine      ResolveAction = "refine"
	ResolveActionAlternative ResolveAction = "alternative"
	ResolveActionCancel      ResolveAction = "cancel"
)

// WorkflowState names a stage of the query pipeline, recorded in the
// per-turn workflow path trace.
type WorkflowState string

const (
	StateValidate          WorkflowState = "validate"
	StateRoute             WorkflowState = "route"
	StateCheckMultiAgent   WorkflowState = "check_multi_agent"
	StateExecuteSingle     WorkflowState = "execute_single"
	StateExecuteMulti      WorkflowState = "execute_multi"
	StateSynthesize        WorkflowState = "synthesize"
	StateGenerateResponse  WorkflowState = "generate_response"
	StateFinalize          WorkflowState = "finalize"
	StateRequestHumanInput WorkflowState = "request_human_input"
	StateHandleError       WorkflowState = "handle_error"
)
