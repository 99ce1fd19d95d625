package model

import (
	"regexp"
	"slices"

	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Source describes which inbound events a rule should consider. Exactly
// one concrete variant exists per source type.
type Source interface {
	Type() types.SourceType
	// VerifySignature reports whether the signature gate applies to
	// events considered by this source
	VerifySignature() bool
	// SecretRef is the opaque locator of the signature secret
	SecretRef() string
	// Match reports whether the event satisfies all source criteria
	Match(ev *CanonicalEvent) bool
	Validate() error
}

// SourceBase carries the criteria shared by all source variants.
type SourceBase struct {
	IncludeRepositories []*regexp.Regexp
	ExcludeRepositories []*regexp.Regexp
	Verify              bool
	SignatureSecret     string
}

func (b *SourceBase) VerifySignature() bool { return b.Verify }
func (b *SourceBase) SecretRef() string     { return b.SignatureSecret }

func (b *SourceBase) Validate() error {
	if b.Verify && b.SignatureSecret == "" {
		return goerr.New("signature_secret must be set when verify_signature is enabled")
	}
	return nil
}

// repositoryAllowed applies include/exclude patterns. An empty include
// list admits every repository; an exclude match wins over any include.
func (b *SourceBase) repositoryAllowed(name string) bool {
	for _, re := range b.ExcludeRepositories {
		if re.MatchString(name) {
			return false
		}
	}
	if len(b.IncludeRepositories) == 0 {
		return true
	}
	for _, re := range b.IncludeRepositories {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// GitHubSource matches events delivered by github.com webhooks.
type GitHubSource struct {
	SourceBase
	Organization string
	Events       []string // compound keys, e.g. "push", "pull_request.closed"
}

func (s *GitHubSource) Type() types.SourceType { return types.SourceGitHub }

func (s *GitHubSource) Match(ev *CanonicalEvent) bool {
	if ev.Source != types.SourceGitHub {
		return false
	}
	if ev.Scope != s.Organization {
		return false
	}
	if !slices.Contains(s.Events, ev.EventKey) {
		return false
	}
	return s.repositoryAllowed(ev.Repository)
}

func (s *GitHubSource) Validate() error {
	if s.Organization == "" {
		return goerr.New("github source requires an organization")
	}
	if len(s.Events) == 0 {
		return goerr.New("github source requires at least one event key")
	}
	return s.SourceBase.Validate()
}

// BitbucketServerSource matches events delivered by Bitbucket Server
// (self-hosted) webhooks.
type BitbucketServerSource struct {
	SourceBase
	ProjectKey string
	Events     []string // event keys, e.g. "repo:refs_changed", "pr:merged"
}

func (s *BitbucketServerSource) Type() types.SourceType { return types.SourceBitbucketServer }

func (s *BitbucketServerSource) Match(ev *CanonicalEvent) bool {
	if ev.Source != types.SourceBitbucketServer {
		return false
	}
	if ev.Scope != s.ProjectKey {
		return false
	}
	if !slices.Contains(s.Events, ev.EventKey) {
		return false
	}
	return s.repositoryAllowed(ev.Repository)
}

func (s *BitbucketServerSource) Validate() error {
	if s.ProjectKey == "" {
		return goerr.New("bitbucket_server source requires a project key")
	}
	if len(s.Events) == 0 {
		return goerr.New("bitbucket_server source requires at least one event key")
	}
	return s.SourceBase.Validate()
}

// CompilePatterns compiles repository patterns for source construction.
// Patterns are unanchored: they match anywhere in the repository name.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid repository pattern", goerr.V("pattern", p))
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
