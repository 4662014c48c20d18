package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// EmployeeClient calls the employee-service directory endpoints
type EmployeeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewEmployeeClient creates a new employee directory client
func NewEmployeeClient(baseURL string) *EmployeeClient {
	if baseURL == "" {
		baseURL = "http://employee-service:8080"
	}

	return &EmployeeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetManager resolves an employee's direct manager
func (c *EmployeeClient) GetManager(ctx context.Context, tenantID string, employeeID uuid.UUID) (*DirectoryEmployee, error) {
	url := fmt.Sprintf("%s/api/v1/employees/%s/manager", c.baseURL, employeeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call employee service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("employee service returned status %d", resp.StatusCode)
	}

	var employee DirectoryEmployee
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &employee, nil
}
