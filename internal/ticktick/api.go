package ticktick

import (
	"context"
	"net/http"
	"net/url"
)

// Typed wrappers over Do for each TickTick Open API operation.
// Mutating operations validate their inputs first and short-circuit
// before any network call.

// GetProjects lists all projects for the user.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/project", nil)
	if err != nil {
		return nil, err
	}
	var projects []Project
	if err := unmarshalPayload(raw, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject fetches a single project by ID.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID), nil)
	if err != nil {
		return nil, err
	}
	var project Project
	if err := unmarshalPayload(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProjectData fetches a project together with its tasks and
// columns.
func (c *Client) GetProjectData(ctx context.Context, projectID string) (*ProjectData, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID)+"/data", nil)
	if err != nil {
		return nil, err
	}
	var data ProjectData
	if err := unmarshalPayload(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateProject creates a new project. The name is required; color,
// view mode and kind fall back to the API defaults.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	if err := ValidateProjectName(input.Name); err != nil {
		return nil, err
	}
	if err := ValidateViewMode(input.ViewMode); err != nil {
		return nil, err
	}
	if input.Color == "" {
		input.Color = DefaultProjectColor
	}
	if input.Kind == "" {
		input.Kind = "TASK"
	}

	raw, err := c.Do(ctx, http.MethodPost, "/project", input)
	if err != nil {
		return nil, err
	}
	var project Project
	if err := unmarshalPayload(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject updates an existing project. Empty fields are left
// unchanged.
func (c *Client) UpdateProject(ctx context.Context, projectID string, input ProjectInput) (*Project, error) {
	if input.Name != "" {
		if err := ValidateProjectName(input.Name); err != nil {
			return nil, err
		}
	}
	if err := ValidateViewMode(input.ViewMode); err != nil {
		return nil, err
	}

	raw, err := c.Do(ctx, http.MethodPost, "/project/"+url.PathEscape(projectID), input)
	if err != nil {
		return nil, err
	}
	var project Project
	if err := unmarshalPayload(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	_, err := c.Do(ctx, http.MethodDelete, "/project/"+url.PathEscape(projectID), nil)
	return err
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID)+"/task/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := unmarshalPayload(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a new task after validating all fields.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*Task, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}
	if input.ProjectID == "" {
		return nil, newError(KindValidation, "project ID cannot be empty")
	}

	raw, err := c.Do(ctx, http.MethodPost, "/task", input)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := unmarshalPayload(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to an existing task. Only the
// fields set on update are validated and sent.
func (c *Client) UpdateTask(ctx context.Context, taskID, projectID string, update TaskUpdate) (*Task, error) {
	if update.Title != nil {
		if err := ValidateTitle(*update.Title); err != nil {
			return nil, err
		}
	}
	if update.Content != nil {
		if err := ValidateContent(*update.Content); err != nil {
			return nil, err
		}
	}
	if update.Priority != nil {
		if err := ValidatePriority(*update.Priority); err != nil {
			return nil, err
		}
	}
	if update.StartDate != nil {
		if err := ValidateDate(*update.StartDate, "start date"); err != nil {
			return nil, err
		}
	}
	if update.DueDate != nil {
		if err := ValidateDate(*update.DueDate, "due date"); err != nil {
			return nil, err
		}
	}

	body := map[string]any{
		"id":        taskID,
		"projectId": projectID,
	}
	if update.Title != nil {
		body["title"] = *update.Title
	}
	if update.Content != nil {
		body["content"] = *update.Content
	}
	if update.Priority != nil {
		body["priority"] = *update.Priority
	}
	if update.StartDate != nil {
		body["startDate"] = *update.StartDate
	}
	if update.DueDate != nil {
		body["dueDate"] = *update.DueDate
	}

	raw, err := c.Do(ctx, http.MethodPost, "/task/"+url.PathEscape(taskID), body)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := unmarshalPayload(raw, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task as complete.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	_, err := c.Do(ctx, http.MethodPost, "/project/"+url.PathEscape(projectID)+"/task/"+url.PathEscape(taskID)+"/complete", nil)
	return err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	_, err := c.Do(ctx, http.MethodDelete, "/project/"+url.PathEscape(projectID)+"/task/"+url.PathEscape(taskID), nil)
	return err
}

// CreateSubtask creates a task nested under a parent task in the same
// project.
func (c *Client) CreateSubtask(ctx context.Context, title, parentTaskID, projectID, content string, priority int) (*Task, error) {
	input := TaskInput{
		Title:     title,
		ProjectID: projectID,
		ParentID:  parentTaskID,
		Content:   content,
		Priority:  priority,
	}
	return c.CreateTask(ctx, input)
}
