package events

// Engine operation names carried in Event.Action.
const (
	ActionListRepositories       = "ListRepositories"
	ActionFetchRepository        = "FetchRepository"
	ActionCreateRepository       = "CreateRepository"
	ActionUpdateRepository       = "UpdateRepository"
	ActionDeleteRepository       = "DeleteRepository"
	ActionResyncRepository       = "ResyncRepository"
	ActionValidateRepository     = "ValidateRepository"
	ActionCheckChartAvailability = "CheckChartAvailability"
	ActionCreatePullSecret       = "CreatePullSecret"
	ActionFetchRelatedSecrets    = "FetchRelatedSecrets"
	ActionFetchImagePullSecrets  = "FetchImagePullSecrets"
	ActionFetchRepositorySecret  = "FetchRepositorySecret"
)
