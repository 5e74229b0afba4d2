package ticktick

import (
	"context"
	"fmt"
	"strings"
)

// TaskCreator creates a single task. *Client satisfies it; tests
// substitute fakes.
type TaskCreator interface {
	CreateTask(ctx context.Context, input TaskInput) (*Task, error)
}

// BatchProblem describes why one entry of a batch failed validation.
type BatchProblem struct {
	Index   int    `json:"index"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// BatchValidationError reports every invalid entry of a rejected batch.
// When returned, no task has been created.
type BatchValidationError struct {
	Problems []BatchProblem
}

func (e *BatchValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = fmt.Sprintf("task %d: %s", p.Index+1, p.Message)
	}
	return "batch rejected: " + strings.Join(msgs, "; ")
}

// BatchCreated records one successfully created task.
type BatchCreated struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	ID    string `json:"id"`
}

// BatchFailed records one task that validated but failed at the API.
type BatchFailed struct {
	Index   int       `json:"index"`
	Title   string    `json:"title"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// BatchResult is the outcome of a batch that passed validation. Every
// input index appears in exactly one of the two lists.
type BatchResult struct {
	Created []BatchCreated `json:"created"`
	Failed  []BatchFailed  `json:"failed"`
}

// CreateBatch creates many tasks with all-or-nothing validation and
// best-effort execution. All inputs are validated up front; if any is
// invalid, a *BatchValidationError lists every invalid entry and no
// creation call is made. Once validation passes, each task is created
// independently and one failure does not stop the rest.
func CreateBatch(ctx context.Context, creator TaskCreator, inputs []TaskInput) (*BatchResult, error) {
	var problems []BatchProblem
	for i, input := range inputs {
		if err := validateTaskInput(input); err != nil {
			problems = append(problems, BatchProblem{Index: i, Title: input.Title, Message: err.Error()})
			continue
		}
		if input.ProjectID == "" {
			problems = append(problems, BatchProblem{Index: i, Title: input.Title, Message: "project ID cannot be empty"})
		}
	}
	if len(problems) > 0 {
		return nil, &BatchValidationError{Problems: problems}
	}

	result := &BatchResult{}
	for i, input := range inputs {
		task, err := creator.CreateTask(ctx, input)
		if err != nil {
			result.Failed = append(result.Failed, BatchFailed{
				Index:   i,
				Title:   input.Title,
				Kind:    KindOf(err),
				Message: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, BatchCreated{
			Index: i,
			Title: task.Title,
			ID:    task.ID,
		})
	}
	return result, nil
}
