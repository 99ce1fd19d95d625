package types

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// SourceType identifies the SCM platform that delivered a webhook
type SourceType string

const (
	SourceGitHub           SourceType = "github"
	SourceGitHubEnterprise SourceType = "github_enterprise"
	SourceBitbucketServer  SourceType = "bitbucket_server"
	SourceBitbucketCloud   SourceType = "bitbucket_cloud"
)

// DestinationType identifies the action target of a rule
type DestinationType string

const (
	DestNone         DestinationType = "none"
	DestCodeBuild    DestinationType = "codebuild"
	DestCodePipeline DestinationType = "codepipeline"
	DestLambda       DestinationType = "lambdafunction"
)

// EventStatus is the terminal status of one processed webhook event
type EventStatus string

const (
	// EventDone means every matched rule reached a terminal outcome
	EventDone EventStatus = "done"
	// EventRejected means classification or signature verification failed
	// and no rule was evaluated
	EventRejected EventStatus = "rejected"
)

// RuleStatus is the terminal outcome of a single matched rule
type RuleStatus string

const (
	RuleSucceeded RuleStatus = "succeeded"
	RuleFailed    RuleStatus = "failed"
)
