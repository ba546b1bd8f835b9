package api

import (
	"context"
	"fmt"
)

// Signup creates an account. The response body is not used.
func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	if err := c.PostJSON(ctx, "/auth/signup", "", creds, nil); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	return nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (Token, error) {
	var tok Token
	if err := c.PostJSON(ctx, "/auth/login", "", creds, &tok); err != nil {
		return Token{}, fmt.Errorf("login failed: %w", err)
	}

	return tok, nil
}

// ListVoices fetches the voice catalog.
func (c *Client) ListVoices(ctx context.Context, token string) ([]Voice, error) {
	var voices []Voice
	if err := c.Get(ctx, "/voices", token, &voices); err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	return voices, nil
}

// ListProjects fetches the user's project summaries.
func (c *Client) ListProjects(ctx context.Context, token string) ([]ProjectSummary, error) {
	var projects []ProjectSummary
	if err := c.Get(ctx, "/projects", token, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// GetProject fetches a project's full detail record.
func (c *Client) GetProject(ctx context.Context, token string, id int64) (ProjectDetail, error) {
	var detail ProjectDetail
	if err := c.Get(ctx, fmt.Sprintf("/projects/%d", id), token, &detail); err != nil {
		return ProjectDetail{}, fmt.Errorf("failed to get project %d: %w", id, err)
	}

	return detail, nil
}

// CreateProject submits a narration request.
func (c *Client) CreateProject(ctx context.Context, token string, form ProjectForm) (ProjectDetail, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return ProjectDetail{}, err
	}

	var detail ProjectDetail
	if err := c.PostMultipart(ctx, "/projects", token, contentType, body, &detail); err != nil {
		return ProjectDetail{}, fmt.Errorf("failed to create project: %w", err)
	}

	return detail, nil
}

// DownloadAudio fetches generated audio from audioURL, which is either
// relative to the API base or absolute.
func (c *Client) DownloadAudio(ctx context.Context, token, audioURL string) ([]byte, string, error) {
	data, contentType, err := c.GetBytes(ctx, audioURL, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download audio: %w", err)
	}

	return data, contentType, nil
}
