package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/launch-dso/hookrelay/pkg/domain/model"
	"github.com/launch-dso/hookrelay/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Source-discriminating and signature headers per SCM platform.
const (
	headerGitHubEvent      = "X-GitHub-Event"
	headerGitHubDelivery   = "X-GitHub-Delivery"
	headerGitHubEnterprise = "X-Github-Enterprise-Version"
	headerGitHubSignature  = "X-Hub-Signature-256"

	headerBitbucketEventKey  = "X-Event-Key"
	headerBitbucketRequestID = "X-Request-Id"
	// Bitbucket Cloud marks its deliveries with a hook UUID
	headerBitbucketCloudHook = "X-Hook-UUID"
	// Bitbucket Server sends its SHA-256 signature as X-Hub-Signature
	headerBitbucketSignature = "X-Hub-Signature"
)

// Classify turns raw headers and body into a canonical event. Only a
// completely unrecognized source is an error; event names the system
// has never seen are classified normally so that new platform events
// work without code changes.
func Classify(headers http.Header, body []byte) (*model.CanonicalEvent, error) {
	switch {
	case headers.Get(headerGitHubEvent) != "":
		if headers.Get(headerGitHubEnterprise) != "" {
			return nil, goerr.Wrap(types.ErrUnrecognizedSource, "github enterprise is not supported")
		}
		return classifyGitHub(headers, body)

	case headers.Get(headerBitbucketEventKey) != "":
		if headers.Get(headerBitbucketCloudHook) != "" {
			return nil, goerr.Wrap(types.ErrUnrecognizedSource, "bitbucket cloud is not supported")
		}
		return classifyBitbucketServer(headers, body)
	}

	return nil, goerr.Wrap(types.ErrUnrecognizedSource, "no known source header present")
}

func classifyGitHub(headers http.Header, body []byte) (*model.CanonicalEvent, error) {
	var envelope struct {
		Action     string `json:"action"`
		Repository struct {
			Name  string `json:"name"`
			Owner struct {
				Login string `json:"login"`
			} `json:"owner"`
		} `json:"repository"`
		Organization struct {
			Login string `json:"login"`
		} `json:"organization"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, goerr.Wrap(types.ErrUnrecognizedSource, "github payload is not valid JSON",
			goerr.V("cause", err.Error()))
	}

	name := headers.Get(headerGitHubEvent)
	key := name
	if envelope.Action != "" {
		key = name + "." + envelope.Action
	}

	scope := envelope.Organization.Login
	if scope == "" {
		scope = envelope.Repository.Owner.Login
	}

	// Typed payload when the SDK knows the event, decoded map otherwise.
	payload, err := github.ParseWebHook(name, body)
	if err != nil {
		var m map[string]any
		_ = json.Unmarshal(body, &m)
		payload = m
	}

	delivery := headers.Get(headerGitHubDelivery)
	if delivery == "" {
		delivery = uuid.NewString()
	}

	return &model.CanonicalEvent{
		Source:     types.SourceGitHub,
		Scope:      scope,
		Repository: envelope.Repository.Name,
		EventKey:   key,
		DeliveryID: delivery,
		Signature:  headers.Get(headerGitHubSignature),
		RawPayload: body,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}, nil
}

func classifyBitbucketServer(headers http.Header, body []byte) (*model.CanonicalEvent, error) {
	var envelope struct {
		Repository *struct {
			Name    string `json:"name"`
			Project struct {
				Key string `json:"key"`
			} `json:"project"`
		} `json:"repository"`
		PullRequest *struct {
			ToRef struct {
				Repository struct {
					Name    string `json:"name"`
					Project struct {
						Key string `json:"key"`
					} `json:"project"`
				} `json:"repository"`
			} `json:"toRef"`
		} `json:"pullRequest"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, goerr.Wrap(types.ErrUnrecognizedSource, "bitbucket payload is not valid JSON",
			goerr.V("cause", err.Error()))
	}

	var repo, project string
	switch {
	case envelope.Repository != nil:
		repo = envelope.Repository.Name
		project = envelope.Repository.Project.Key
	case envelope.PullRequest != nil:
		repo = envelope.PullRequest.ToRef.Repository.Name
		project = envelope.PullRequest.ToRef.Repository.Project.Key
	}

	var payload map[string]any
	_ = json.Unmarshal(body, &payload)

	delivery := headers.Get(headerBitbucketRequestID)
	if delivery == "" {
		delivery = uuid.NewString()
	}

	return &model.CanonicalEvent{
		Source:     types.SourceBitbucketServer,
		Scope:      project,
		Repository: repo,
		EventKey:   headers.Get(headerBitbucketEventKey),
		DeliveryID: delivery,
		Signature:  headers.Get(headerBitbucketSignature),
		RawPayload: body,
		Payload:    payload,
		ReceivedAt: time.Now(),
	}, nil
}

// VerifySignature checks an HMAC-SHA256 signature over the raw,
// unparsed body using a constant-time comparison.
func VerifySignature(secret, body []byte, signature string) error {
	if signature == "" {
		return goerr.Wrap(types.ErrSignatureMismatch, "missing signature header")
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return goerr.Wrap(types.ErrSignatureMismatch, "signature does not match body HMAC")
	}
	return nil
}
