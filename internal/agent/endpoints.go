package agent

import (
	"fmt"
	"strings"
)

// SubmitURL returns the submission endpoint. An explicit override wins; with
// a workflow id configured the run is scoped to that workflow, otherwise the
// plain run endpoint plus agent_name in the payload selects the agent.
func SubmitURL(baseURL, override, workflowID string) string {
	if override != "" {
		return override
	}
	base := strings.TrimRight(baseURL, "/")
	if workflowID != "" {
		return fmt.Sprintf("%s/%s/run", base, workflowID)
	}
	return base + "/run"
}

// StatusCandidates returns the ordered list of status URLs to try for one
// polling attempt: the documented primary shape first, then fallbacks in
// descending order of likelihood. The agent's API surface is not consistent
// across deployment configurations, so the correct shape cannot be known in
// advance. Templates that would need an empty path segment are skipped.
func StatusCandidates(baseURL, runID, workflowID string) []string {
	if runID == "" {
		return nil
	}
	base := strings.TrimRight(baseURL, "/")

	urls := []string{
		// Primary shape; output_var selects the display output node.
		fmt.Sprintf("%s/%s/status?output_var=final_display_output", base, runID),
	}
	if workflowID != "" {
		urls = append(urls,
			fmt.Sprintf("%s/%s/run/%s", base, workflowID, runID),
			fmt.Sprintf("%s/%s/runs/%s/status", base, workflowID, runID),
		)
	}
	urls = append(urls,
		fmt.Sprintf("%s/run/%s", base, runID),
		fmt.Sprintf("%s/%s", base, runID),
	)

	// Legacy cards endpoint lives outside the public workflow prefix.
	if strings.Contains(base, "/public/workflow") {
		legacy := strings.Replace(base, "/public/workflow", "/workflow/cards", 1)
		urls = append(urls, fmt.Sprintf("%s/%s", legacy, runID))
	}
	return urls
}
