package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/rackmate/internal/domain"
	ory "github.com/ory/kratos-client-go"
)

const opKratosSignUp = "identity.kratos_signup"

// Kratos UI message IDs that mean the identifier is already taken.
// https://www.ory.sh/docs/kratos/concepts/ui-messages
var duplicateIdentifierIDs = map[int64]bool{
	4000007: true,
	4000027: true,
}

// Kratos node names mapped to form field names.
var nodeFields = map[string]string{
	"traits.name":  "name",
	"traits.email": "email",
	"password":     "password",
}

// KratosConfig configures a KratosRegistrar.
type KratosConfig struct {
	PublicURL  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// KratosRegistrar creates accounts through the Ory Kratos native
// registration flow using the password method.
type KratosRegistrar struct {
	client  *ory.APIClient
	timeout time.Duration
	logger  *slog.Logger
}

// NewKratosRegistrar creates a registrar talking to the Kratos public API.
func NewKratosRegistrar(cfg KratosConfig) *KratosRegistrar {
	conf := ory.NewConfiguration()
	conf.Servers = []ory.ServerConfiguration{
		{
			URL: strings.TrimRight(cfg.PublicURL, "/"),
		},
	}
	if cfg.HTTPClient != nil {
		conf.HTTPClient = cfg.HTTPClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &KratosRegistrar{
		client:  ory.NewAPIClient(conf),
		timeout: timeout,
		logger:  logger,
	}
}

// SignUp creates a registration flow and submits the credentials to it.
//
// Errors:
//   - domain.ECONFLICT when the email is already registered
//   - *domain.ValidationError when Kratos rejects individual fields
//   - domain.EINVALID for flow-level rejections
//   - domain.EUNAVAIL when Kratos cannot be reached or fails
func (r *KratosRegistrar) SignUp(ctx context.Context, req domain.SignUpRequest) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	flow, resp, err := r.client.FrontendAPI.CreateNativeRegistrationFlow(ctx).Execute()
	if err != nil {
		return r.translateError(ctx, "create_registration_flow", err, resp)
	}

	body := ory.UpdateRegistrationFlowBody{
		UpdateRegistrationFlowWithPasswordMethod: &ory.UpdateRegistrationFlowWithPasswordMethod{
			Method:   "password",
			Password: req.Password,
			Traits: map[string]interface{}{
				"email": req.Email,
				"name":  req.FullName,
			},
		},
	}

	result, resp, err := r.client.FrontendAPI.UpdateRegistrationFlow(ctx).
		Flow(flow.Id).
		UpdateRegistrationFlowBody(body).
		Execute()
	if err != nil {
		return r.translateError(ctx, "submit_registration", err, resp)
	}

	r.logger.InfoContext(ctx, "kratos identity created",
		"identity_id", result.Identity.Id,
		"email", req.Email,
	)
	return nil
}

// kratosErrorBody covers both error shapes Kratos returns: a registration
// flow with UI messages (400) and a generic error envelope.
type kratosErrorBody struct {
	UI struct {
		Messages []uiMessage `json:"messages"`
		Nodes    []struct {
			Attributes struct {
				Name string `json:"name"`
			} `json:"attributes"`
			Messages []uiMessage `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
}

type uiMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

func (r *KratosRegistrar) translateError(ctx context.Context, step string, err error, resp *http.Response) error {
	if resp == nil {
		r.logger.WarnContext(ctx, "kratos unreachable", "step", step, "error", err)
		return domain.Unavailable(err, opKratosSignUp)
	}

	var parsed kratosErrorBody
	var apiErr *ory.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		_ = json.Unmarshal(apiErr.Body(), &parsed)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return registrationRejection(parsed)
	case resp.StatusCode >= http.StatusInternalServerError:
		r.logger.ErrorContext(ctx, "kratos server error",
			"step", step,
			"status", resp.StatusCode,
			"error", err,
		)
		return domain.Unavailable(err, opKratosSignUp)
	default:
		attrs := []any{"step", step, "status", resp.StatusCode, "error", err}
		if parsed.Error != nil {
			attrs = append(attrs, "reason", parsed.Error.Reason)
		}
		r.logger.ErrorContext(ctx, "kratos registration failed", attrs...)
		return domain.Internal(err, opKratosSignUp, "registration flow failed")
	}
}

func registrationRejection(body kratosErrorBody) error {
	var fieldErr *domain.ValidationError
	var flowMessages []string

	check := func(msgs []uiMessage) bool {
		for _, m := range msgs {
			if duplicateIdentifierIDs[m.ID] {
				return true
			}
		}
		return false
	}

	if check(body.UI.Messages) {
		return domain.Conflict(opKratosSignUp, "An account with this email already exists")
	}
	for _, m := range body.UI.Messages {
		if m.Type == "error" {
			flowMessages = append(flowMessages, m.Text)
		}
	}

	for _, node := range body.UI.Nodes {
		if check(node.Messages) {
			return domain.Conflict(opKratosSignUp, "An account with this email already exists")
		}
		for _, m := range node.Messages {
			if m.Type != "error" {
				continue
			}
			field, ok := nodeFields[node.Attributes.Name]
			if !ok {
				flowMessages = append(flowMessages, m.Text)
				continue
			}
			if fieldErr == nil {
				fieldErr = domain.NewValidationError(opKratosSignUp, field, m.Text)
			} else {
				domain.AddFieldError(fieldErr, field, m.Text)
			}
		}
	}

	if fieldErr != nil {
		return fieldErr
	}
	if len(flowMessages) > 0 {
		return domain.Invalid(opKratosSignUp, flowMessages[0])
	}
	return domain.Invalid(opKratosSignUp, "The sign-up request was rejected. Please review your details.")
}
