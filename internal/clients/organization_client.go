package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OrganizationClient calls the organization-service directory endpoints
type OrganizationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOrganizationClient creates a new organization directory client
func NewOrganizationClient(baseURL string) *OrganizationClient {
	if baseURL == "" {
		baseURL = "http://organization-service:8080"
	}

	return &OrganizationClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetDepartmentHead resolves the head of a department
func (c *OrganizationClient) GetDepartmentHead(ctx context.Context, tenantID string, departmentID uuid.UUID) (*DirectoryEmployee, error) {
	url := fmt.Sprintf("%s/api/v1/departments/%s/head", c.baseURL, departmentID)
	return c.getEmployee(ctx, tenantID, url)
}

// GetPositionHolder resolves the holder of a position code within a department
func (c *OrganizationClient) GetPositionHolder(ctx context.Context, tenantID string, positionCode string, departmentID uuid.UUID) (*DirectoryEmployee, error) {
	url := fmt.Sprintf("%s/api/v1/departments/%s/positions/%s/holder", c.baseURL, departmentID, positionCode)
	return c.getEmployee(ctx, tenantID, url)
}

func (c *OrganizationClient) getEmployee(ctx context.Context, tenantID string, url string) (*DirectoryEmployee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call organization service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("organization service returned status %d", resp.StatusCode)
	}

	var employee DirectoryEmployee
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &employee, nil
}
