package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// GithubClient talks to the GitHub GraphQL API to check organization
// membership. BaseURL is overridable for tests.
type GithubClient struct {
	BaseURL string
	Token   string // fallback token when the caller supplies none
	Client  *http.Client
}

func NewGithubClient(token string) *GithubClient {
	return &GithubClient{
		BaseURL: "https://api.github.com/graphql",
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

const orgAdminQuery = `
query($orgName: String!) {
  organization(login: $orgName) {
    viewerIsAMember
    viewerCanAdminister
  }
}`

type orgAdminResponse struct {
	Data struct {
		Organization *struct {
			ViewerIsAMember     bool `json:"viewerIsAMember"`
			ViewerCanAdminister bool `json:"viewerCanAdminister"`
		} `json:"organization"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// CanAdminister reports whether the token's user administers the named
// organization. token may be empty, in which case the client's fallback
// token is used.
func (c *GithubClient) CanAdminister(ctx context.Context, orgName, token string) (bool, error) {
	if token == "" {
		token = c.Token
	}
	if token == "" {
		return false, fmt.Errorf("no GitHub access token available")
	}

	reqBody := map[string]interface{}{
		"query": orgAdminQuery,
		"variables": map[string]string{
			"orgName": orgName,
		},
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return false, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("GitHub GraphQL returned %d: %s", resp.StatusCode, string(body))
		return false, fmt.Errorf("github graphql request failed: %d", resp.StatusCode)
	}

	var out orgAdminResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, err
	}

	if len(out.Errors) > 0 {
		return false, fmt.Errorf("github graphql error: %s", out.Errors[0].Message)
	}
	if out.Data.Organization == nil {
		return false, fmt.Errorf("organization %q not found or not visible to token", orgName)
	}

	return out.Data.Organization.ViewerCanAdminister, nil
}
