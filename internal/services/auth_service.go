package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/authorizerdev/authorizer-go"
	"github.com/renthaven/renthaven/internal/config"
	"github.com/renthaven/renthaven/internal/models"
	"github.com/renthaven/renthaven/internal/types"
	"github.com/renthaven/renthaven/internal/utils"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// ValidateSession validates a session cookie for the given roles and returns
// the authenticated user.
func ValidateSession(cookie string, roles []string) (*models.AuthUser, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	// Convert roles to []*string
	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}

	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	// Decode through JSON so we only depend on the id/email wire fields
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	var user models.AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("session user has no id")
	}

	return &user, nil
}

// SignUp registers a new account with the identity provider.
func SignUp(email, password string) error {
	if authClient == nil {
		return fmt.Errorf("authorizer client not initialized")
	}

	_, err := authClient.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	return err
}

// LoginResult carries the authenticated user plus the raw Set-Cookie headers
// issued by Authorizer, to be forwarded verbatim to the browser.
type LoginResult struct {
	User       *models.AuthUser
	SetCookies []string
}

// Login authenticates against Authorizer with a raw GraphQL request.
// The SDK hides response headers and the session only exists as a
// Set-Cookie header on the GraphQL response, so this goes direct.
func Login(cfg *config.Config, email, password string) (*LoginResult, error) {
	query := `mutation login($params: LoginInput!) {
		login(params: $params) {
			message
			user {
				id
				email
			}
		}
	}`
	variables := map[string]interface{}{
		"params": map[string]string{
			"email":    email,
			"password": password,
		},
	}

	data, setCookies, err := graphqlRequest(cfg, query, variables, "")
	if err != nil {
		return nil, err
	}

	loginData, ok := data["login"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("no login data in response")
	}

	user := authUserFromGraphQL(loginData["user"])
	if user == nil {
		return nil, fmt.Errorf("no user in login response")
	}

	return &LoginResult{User: user, SetCookies: setCookies}, nil
}

// Logout revokes the session. The caller's Cookie header is forwarded so
// Authorizer can identify the session; the returned Set-Cookie headers
// clear it on the browser.
func Logout(cfg *config.Config, cookieHeader string) ([]string, error) {
	query := `mutation {
		logout {
			message
		}
	}`

	_, setCookies, err := graphqlRequest(cfg, query, nil, cookieHeader)
	if err != nil {
		return nil, err
	}
	return setCookies, nil
}

// ForgotPassword triggers the provider's password reset email.
func ForgotPassword(cfg *config.Config, email string) error {
	query := `mutation forgotPassword($params: ForgotPasswordInput!) {
		forgot_password(params: $params) {
			message
		}
	}`
	variables := map[string]interface{}{
		"params": map[string]string{
			"email": email,
		},
	}

	_, _, err := graphqlRequest(cfg, query, variables, "")
	return err
}

// graphqlRequest performs a raw GraphQL request against the Authorizer
// endpoint and captures any Set-Cookie response headers.
func graphqlRequest(cfg *config.Config, query string, variables map[string]interface{}, cookieHeader string) (map[string]interface{}, []string, error) {
	payload := map[string]interface{}{
		"query": query,
	}
	if variables != nil {
		payload["variables"] = variables
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	graphqlURL := strings.TrimSuffix(cfg.AuthzURL, "/") + "/graphql"
	req, err := http.NewRequest(http.MethodPost, graphqlURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to decode JSON: %v, body: %s", err, string(body))
	}

	if errs, ok := result["errors"].([]interface{}); ok && len(errs) > 0 {
		msg := fmt.Sprintf("GraphQL error: %v", errs[0])
		if first, ok := errs[0].(map[string]interface{}); ok {
			if m, ok := first["message"].(string); ok && m != "" {
				msg = m
			}
		}
		// Provider-reported failures carry a typed error so handlers can
		// forward the provider's message verbatim
		return nil, nil, &types.CustomError{
			Code:    resp.StatusCode,
			Message: msg,
			Type:    "authorizer",
		}
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("no data in response, body: %s", string(body))
	}

	return data, resp.Header.Values("Set-Cookie"), nil
}

func authUserFromGraphQL(v interface{}) *models.AuthUser {
	userMap, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	id, _ := userMap["id"].(string)
	email, _ := userMap["email"].(string)
	if id == "" {
		return nil
	}
	return &models.AuthUser{ID: id, Email: email}
}
