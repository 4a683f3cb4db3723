package github

import (
	"encoding/json"
	"time"

	"github-projects-mcp/internal/datetime"
	apperrors "github-projects-mcp/internal/errors"

	"github.com/rs/zerolog/log"
)

// maxParentDepth bounds Issue.Parent recursion.
const maxParentDepth = 16

const iterationFieldName = "Iteration"

// MsgMissingTimestamps is the validation message for records without creation or update times.
const MsgMissingTimestamps = "createdAt and updatedAt are required fields"

// Decoder turns one raw page node into a record. ok is false when the node
// carries nothing of the requested type and should be skipped.
type Decoder[T any] func(raw json.RawMessage) (record T, ok bool, err error)

// MapIssue transforms an issue project item into a domain Issue.
func MapIssue(item ProjectItemDTO) (Issue, error) {
	var content IssueContentDTO
	if err := json.Unmarshal(item.Content, &content); err != nil {
		return Issue{}, apperrors.NewValidationError("malformed issue content", err)
	}

	issue, err := mapIssueContent(content, 0)
	if err != nil {
		return Issue{}, err
	}

	for _, fv := range item.FieldValues.Nodes {
		if fv.Field != nil && fv.Field.Name == iterationFieldName && fv.IterationID != "" {
			issue.Iteration = &Iteration{ID: fv.IterationID}
			break
		}
	}
	return issue, nil
}

func mapIssueContent(c IssueContentDTO, depth int) (Issue, error) {
	created, updated, err := requiredTimestamps(c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return Issue{}, err
	}

	issue := Issue{
		ID:        c.ID,
		Number:    c.Number,
		Title:     c.Title,
		URL:       c.URL,
		State:     c.State,
		Body:      c.Body,
		CreatedAt: created,
		UpdatedAt: updated,
		ClosedAt:  parseOptional(c.ClosedAt),
		Assignees: mapActors(c.Assignees.Nodes),
		Labels:    mapLabels(c.Labels.Nodes),
		Repo:      mapRepository(c.Repository),
	}
	if c.Author != nil {
		issue.Author = Actor{Login: c.Author.Login, URL: c.Author.URL}
	}

	if c.Parent != nil {
		if depth+1 >= maxParentDepth {
			log.Debug().Str("issue", c.ID).Int("depth", depth).Msg("Dropping parent beyond depth cap")
			return issue, nil
		}
		parent, err := mapIssueContent(*c.Parent, depth+1)
		if err != nil {
			return Issue{}, err
		}
		issue.Parent = &parent
	}
	return issue, nil
}

// MapPullRequestEnveloped transforms a pull request project item. Iteration
// linkage comes from the first field value carrying an iteration ID.
func MapPullRequestEnveloped(item ProjectItemDTO) (PullRequest, error) {
	var content PullRequestDTO
	if err := json.Unmarshal(item.Content, &content); err != nil {
		return PullRequest{}, apperrors.NewValidationError("malformed pull request content", err)
	}

	pr, err := mapPullRequestContent(content)
	if err != nil {
		return PullRequest{}, err
	}

	for _, fv := range item.FieldValues.Nodes {
		if fv.IterationID != "" {
			pr.Iteration = &Iteration{ID: fv.IterationID}
			break
		}
	}
	return pr, nil
}

// MapPullRequestDirect transforms a repository pull request node. These nodes
// have no project context, so Iteration stays nil.
func MapPullRequestDirect(node PullRequestDTO) (PullRequest, error) {
	return mapPullRequestContent(node)
}

func mapPullRequestContent(c PullRequestDTO) (PullRequest, error) {
	created, updated, err := requiredTimestamps(c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return PullRequest{}, err
	}

	pr := PullRequest{
		ID:           c.ID,
		Number:       c.Number,
		Title:        c.Title,
		URL:          c.URL,
		State:        c.State,
		Body:         c.Body,
		CreatedAt:    created,
		UpdatedAt:    updated,
		ClosedAt:     parseOptional(c.ClosedAt),
		MergedAt:     parseOptional(c.MergedAt),
		Merged:       c.Merged,
		Assignees:    mapActors(c.Assignees.Nodes),
		Labels:       mapLabels(c.Labels.Nodes),
		Repo:         mapRepository(c.Repository),
		BaseRef:      c.BaseRefName,
		HeadRef:      c.HeadRefName,
		Additions:    max(c.Additions, 0),
		Deletions:    max(c.Deletions, 0),
		ChangedFiles: max(c.ChangedFiles, 0),
		Reviews:      make([]ReviewSummary, 0, len(c.Reviews.Nodes)),
	}
	if c.Author != nil {
		pr.Author = &Actor{Login: c.Author.Login, URL: c.Author.URL}
	}
	for _, r := range c.Reviews.Nodes {
		rs := ReviewSummary{State: r.State}
		if r.Author != nil {
			rs.AuthorLogin = r.Author.Login
		}
		pr.Reviews = append(pr.Reviews, rs)
	}
	return pr, nil
}

// MapIteration transforms an iteration configuration entry, deriving whichever
// of start, end and duration is missing when the other two are known.
// Supplied values are never overwritten. A zero duration counts as missing.
func MapIteration(dto IterationDTO) Iteration {
	it := Iteration{
		ID:        dto.ID,
		Title:     dto.Title,
		StartDate: parseOptional(dto.StartDate),
		EndDate:   parseOptional(dto.EndDate),
	}
	if dto.Duration != nil {
		d := *dto.Duration
		it.DurationDays = &d
	}

	hasDuration := it.DurationDays != nil && *it.DurationDays != 0

	if it.StartDate != nil && it.EndDate != nil && !hasDuration {
		days := wholeDays(it.EndDate.Sub(*it.StartDate))
		it.DurationDays = &days
	}
	if it.StartDate != nil && hasDuration && it.EndDate == nil {
		end := it.StartDate.Add(time.Duration(*it.DurationDays) * 24 * time.Hour)
		it.EndDate = &end
	}
	return it
}

// wholeDays floors d to whole days, rounding towards negative infinity.
func wholeDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// DecodeIssueItem decodes an issue project item node.
func DecodeIssueItem(raw json.RawMessage) (Issue, bool, error) {
	var item ProjectItemDTO
	if err := json.Unmarshal(raw, &item); err != nil {
		return Issue{}, false, apperrors.NewValidationError("malformed project item", err)
	}
	if !item.HasContent() {
		return Issue{}, false, nil
	}
	issue, err := MapIssue(item)
	if err != nil {
		return Issue{}, false, err
	}
	return issue, true, nil
}

// DecodePullRequestItem decodes a pull request project item node.
func DecodePullRequestItem(raw json.RawMessage) (PullRequest, bool, error) {
	var item ProjectItemDTO
	if err := json.Unmarshal(raw, &item); err != nil {
		return PullRequest{}, false, apperrors.NewValidationError("malformed project item", err)
	}
	if !item.HasContent() {
		return PullRequest{}, false, nil
	}
	pr, err := MapPullRequestEnveloped(item)
	if err != nil {
		return PullRequest{}, false, err
	}
	return pr, true, nil
}

// DecodePullRequestNode decodes a direct repository pull request node.
func DecodePullRequestNode(raw json.RawMessage) (PullRequest, bool, error) {
	if s := string(raw); s == "" || s == "null" {
		return PullRequest{}, false, nil
	}
	var node PullRequestDTO
	if err := json.Unmarshal(raw, &node); err != nil {
		return PullRequest{}, false, apperrors.NewValidationError("malformed pull request node", err)
	}
	pr, err := MapPullRequestDirect(node)
	if err != nil {
		return PullRequest{}, false, err
	}
	return pr, true, nil
}

func requiredTimestamps(created, updated *string) (time.Time, time.Time, error) {
	c, u := parseOptional(created), parseOptional(updated)
	if c == nil || u == nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(MsgMissingTimestamps, nil)
	}
	return *c, *u, nil
}

func parseOptional(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return datetime.Parse(*s)
}

func mapActors(in []ActorDTO) []Actor {
	out := make([]Actor, 0, len(in))
	for _, a := range in {
		out = append(out, Actor{Login: a.Login, URL: a.URL})
	}
	return out
}

func mapLabels(in []LabelDTO) []Label {
	out := make([]Label, 0, len(in))
	for _, l := range in {
		out = append(out, Label{Name: l.Name, Color: l.Color})
	}
	return out
}

func mapRepository(r *RepositoryDTO) RepositoryRef {
	if r == nil {
		return RepositoryRef{}
	}
	return RepositoryRef{FullName: r.NameWithOwner, URL: r.URL}
}
