package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/launch-dso/hookrelay/pkg/domain/interfaces"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/launch-dso/hookrelay/pkg/usecase"
)

type fakeSecrets struct {
	secrets map[string][]byte
}

func (f *fakeSecrets) Resolve(ctx context.Context, ref string) ([]byte, error) {
	secret, ok := f.secrets[ref]
	if !ok {
		return nil, errors.New("secret not found: " + ref)
	}
	return secret, nil
}

func pushHeaders(signature string) http.Header {
	headers := http.Header{}
	headers.Set("X-GitHub-Event", "push")
	headers.Set("X-GitHub-Delivery", "test-delivery")
	if signature != "" {
		headers.Set("X-Hub-Signature-256", signature)
	}
	return headers
}

var pushBody = []byte(`{"ref":"refs/heads/main","repository":{"name":"widget","owner":{"login":"acme"}},"organization":{"login":"acme"}}`)

func newRule(t *testing.T, name string, src model.Source, fn model.TransformFunc, dst model.Destination) *model.Rule {
	t.Helper()
	rule, err := model.NewRule(name, src, fn, dst)
	if err != nil {
		t.Fatalf("NewRule(%s) error = %v", name, err)
	}
	return rule
}

func pushSource(org string) *model.GitHubSource {
	return &model.GitHubSource{
		Organization: org,
		Events:       []string{"push"},
	}
}

func newProcessor(t *testing.T, rules []*model.Rule, secrets *fakeSecrets, provider *fakeProvider) *usecase.Processor {
	t.Helper()
	if secrets == nil {
		secrets = &fakeSecrets{}
	}
	dispatcher := usecase.NewDispatcher(&fakeBroker{}, map[types.DestinationType]interfaces.ActionProvider{
		types.DestNone:      usecase.NoopProvider{},
		types.DestCodeBuild: provider,
	})
	return usecase.NewProcessor(rules, secrets, dispatcher)
}

func TestProcessor_MatchedRulesDispatch(t *testing.T) {
	provider := &fakeProvider{}
	rules := []*model.Rule{
		newRule(t, "build", pushSource("acme"), nil, codebuildDest("build-project")),
		newRule(t, "audit", pushSource("acme"), nil, &model.NoDestination{}),
		newRule(t, "other-org", pushSource("globex"), nil, codebuildDest("other-project")),
	}
	p := newProcessor(t, rules, nil, provider)

	result, err := p.Handle(context.Background(), pushHeaders(""), pushBody)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if result.Status != types.EventDone {
		t.Errorf("Status = %v, want %v", result.Status, types.EventDone)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("Outcomes = %d, want 2", len(result.Outcomes))
	}
	// Outcomes keep declaration order regardless of dispatch completion
	if result.Outcomes[0].Rule != "build" || result.Outcomes[1].Rule != "audit" {
		t.Errorf("outcome order = [%s, %s], want [build, audit]",
			result.Outcomes[0].Rule, result.Outcomes[1].Rule)
	}
	for _, outcome := range result.Outcomes {
		if outcome.Status != types.RuleSucceeded {
			t.Errorf("outcome %s status = %v, want %v", outcome.Rule, outcome.Status, types.RuleSucceeded)
		}
	}
	if len(provider.invoked) != 1 {
		t.Errorf("codebuild provider invoked %d times, want 1", len(provider.invoked))
	}
}

func TestProcessor_NoMatchIsDoneWithZeroOutcomes(t *testing.T) {
	provider := &fakeProvider{}
	rules := []*model.Rule{
		newRule(t, "other-org", pushSource("globex"), nil, codebuildDest("other-project")),
	}
	p := newProcessor(t, rules, nil, provider)

	result, err := p.Handle(context.Background(), pushHeaders(""), pushBody)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if result.Status != types.EventDone {
		t.Errorf("Status = %v, want %v", result.Status, types.EventDone)
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("Outcomes = %d, want 0", len(result.Outcomes))
	}
	if len(provider.invoked) != 0 {
		t.Errorf("provider invoked %d times, want 0", len(provider.invoked))
	}
}

func TestProcessor_RuleFailureIsIsolated(t *testing.T) {
	provider := &fakeProvider{}
	failing := func(ctx context.Context, ev *model.CanonicalEvent) (*model.TransformResult, error) {
		panic("transform bug")
	}
	rules := []*model.Rule{
		newRule(t, "broken", pushSource("acme"), failing, codebuildDest("broken-project")),
		newRule(t, "healthy", pushSource("acme"), nil, codebuildDest("healthy-project")),
	}
	p := newProcessor(t, rules, nil, provider)

	result, err := p.Handle(context.Background(), pushHeaders(""), pushBody)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if result.Status != types.EventDone {
		t.Errorf("Status = %v, want %v", result.Status, types.EventDone)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("Outcomes = %d, want 2", len(result.Outcomes))
	}

	broken := result.Outcomes[0]
	if broken.Status != types.RuleFailed {
		t.Errorf("broken rule status = %v, want %v", broken.Status, types.RuleFailed)
	}
	if broken.Error == "" {
		t.Error("broken rule outcome should carry the error")
	}

	healthy := result.Outcomes[1]
	if healthy.Status != types.RuleSucceeded {
		t.Errorf("healthy rule status = %v, want %v", healthy.Status, types.RuleSucceeded)
	}

	// The sibling rule still dispatched
	if len(provider.invoked) != 1 {
		t.Fatalf("provider invoked %d times, want 1", len(provider.invoked))
	}
	if provider.invoked[0].Target() != "healthy-project" {
		t.Errorf("dispatched target = %v, want healthy-project", provider.invoked[0].Target())
	}
}

func TestProcessor_SignatureGate(t *testing.T) {
	secret := "gate-secret"
	verifySource := func() *model.GitHubSource {
		return &model.GitHubSource{
			SourceBase: model.SourceBase{
				Verify:          true,
				SignatureSecret: "secret/hookrelay/github",
			},
			Organization: "acme",
			Events:       []string{"push"},
		}
	}
	secrets := &fakeSecrets{secrets: map[string][]byte{
		"secret/hookrelay/github": []byte(secret),
	}}

	t.Run("valid signature passes the gate", func(t *testing.T) {
		provider := &fakeProvider{}
		rules := []*model.Rule{
			newRule(t, "verified", verifySource(), nil, codebuildDest("build-project")),
		}
		p := newProcessor(t, rules, secrets, provider)

		sig := generateSignature(secret, pushBody)
		result, err := p.Handle(context.Background(), pushHeaders(sig), pushBody)
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if result.Status != types.EventDone {
			t.Errorf("Status = %v, want %v", result.Status, types.EventDone)
		}
		if len(provider.invoked) != 1 {
			t.Errorf("provider invoked %d times, want 1", len(provider.invoked))
		}
	})

	t.Run("invalid signature rejects the event with zero dispatches", func(t *testing.T) {
		provider := &fakeProvider{}
		rules := []*model.Rule{
			newRule(t, "verified", verifySource(), nil, codebuildDest("build-project")),
		}
		p := newProcessor(t, rules, secrets, provider)

		result, err := p.Handle(context.Background(), pushHeaders("sha256=bogus"), pushBody)
		if err == nil {
			t.Fatal("Handle() should report the gate failure")
		}
		if !errors.Is(err, types.ErrSignatureMismatch) {
			t.Errorf("Handle() error = %v, want ErrSignatureMismatch", err)
		}
		if result.Status != types.EventRejected {
			t.Errorf("Status = %v, want %v", result.Status, types.EventRejected)
		}
		if len(result.Outcomes) != 0 {
			t.Errorf("Outcomes = %d, want 0", len(result.Outcomes))
		}
		if len(provider.invoked) != 0 {
			t.Errorf("provider invoked %d times, want 0", len(provider.invoked))
		}
	})

	t.Run("missing signature fails the gate", func(t *testing.T) {
		provider := &fakeProvider{}
		rules := []*model.Rule{
			newRule(t, "verified", verifySource(), nil, codebuildDest("build-project")),
		}
		p := newProcessor(t, rules, secrets, provider)

		_, err := p.Handle(context.Background(), pushHeaders(""), pushBody)
		if !errors.Is(err, types.ErrSignatureMismatch) {
			t.Errorf("Handle() error = %v, want ErrSignatureMismatch", err)
		}
	})

	t.Run("gate does not apply to other source types", func(t *testing.T) {
		provider := &fakeProvider{}
		rules := []*model.Rule{
			newRule(t, "bitbucket-only", &model.BitbucketServerSource{
				SourceBase: model.SourceBase{
					Verify:          true,
					SignatureSecret: "secret/hookrelay/bitbucket",
				},
				ProjectKey: "PLAT",
				Events:     []string{"pr:merged"},
			}, nil, &model.NoDestination{}),
		}
		p := newProcessor(t, rules, secrets, provider)

		// GitHub delivery without a signature: the only verify-enabled
		// source is for Bitbucket Server, so no gate applies.
		result, err := p.Handle(context.Background(), pushHeaders(""), pushBody)
		if err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		if result.Status != types.EventDone {
			t.Errorf("Status = %v, want %v", result.Status, types.EventDone)
		}
	})
}

func TestProcessor_UnrecognizedSourceRejected(t *testing.T) {
	p := newProcessor(t, nil, nil, &fakeProvider{})

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	result, err := p.Handle(context.Background(), headers, []byte(`{}`))
	if !errors.Is(err, types.ErrUnrecognizedSource) {
		t.Errorf("Handle() error = %v, want ErrUnrecognizedSource", err)
	}
	if result.Status != types.EventRejected {
		t.Errorf("Status = %v, want %v", result.Status, types.EventRejected)
	}
}
