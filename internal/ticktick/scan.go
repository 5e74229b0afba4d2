package ticktick

import (
	"context"
	"log/slog"
)

// ProjectDataFetcher fetches the full contents of a single project.
// *Client satisfies it; tests substitute fakes.
type ProjectDataFetcher interface {
	GetProjectData(ctx context.Context, projectID string) (*ProjectData, error)
}

// TaskMatch is a single task that satisfied a scan predicate, carrying
// its 1-based position within its project's task list.
type TaskMatch struct {
	Task     Task
	Position int
}

// ProjectReport is the scan result for one project.
type ProjectReport struct {
	Project Project
	Matches []TaskMatch
	// Skipped is set for closed projects, which are reported but never
	// fetched.
	Skipped bool
	// Err records a per-project fetch failure. A failed project never
	// aborts the scan of the others.
	Err error
}

// ScanReport aggregates a predicate scan across projects.
type ScanReport struct {
	// Label names the classification being scanned for, e.g.
	// "due today" or "overdue".
	Label    string
	Projects []ProjectReport
	// Total is the number of matching tasks across all projects.
	Total int
	// Failed is the number of projects whose data could not be fetched.
	Failed int
}

// Scan evaluates pred against every task of every open project. Closed
// projects are skipped without a fetch. A project whose data fetch
// fails is recorded in its report and counted in Failed, and the scan
// continues with the remaining projects.
func Scan(ctx context.Context, fetcher ProjectDataFetcher, logger *slog.Logger, projects []Project, pred Predicate, label string) *ScanReport {
	if logger == nil {
		logger = slog.Default()
	}

	report := &ScanReport{
		Label:    label,
		Projects: make([]ProjectReport, 0, len(projects)),
	}

	for _, project := range projects {
		if project.Closed {
			report.Projects = append(report.Projects, ProjectReport{Project: project, Skipped: true})
			continue
		}

		data, err := fetcher.GetProjectData(ctx, project.ID)
		if err != nil {
			logger.Warn("skipping project after fetch failure",
				"project_id", project.ID,
				"project_name", project.Name,
				"error", err)
			report.Projects = append(report.Projects, ProjectReport{Project: project, Err: err})
			report.Failed++
			continue
		}

		pr := ProjectReport{Project: project}
		for i, task := range data.Tasks {
			if pred(task) {
				pr.Matches = append(pr.Matches, TaskMatch{Task: task, Position: i + 1})
			}
		}
		report.Total += len(pr.Matches)
		report.Projects = append(report.Projects, pr)
	}

	return report
}
