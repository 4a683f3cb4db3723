package github

import "encoding/json"

// Page is one page of raw nodes plus its cursor information.
type Page struct {
	Nodes       []json.RawMessage
	HasNextPage bool
	EndCursor   string
}

// PageInfoDTO is the GraphQL connection page info.
type PageInfoDTO struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// ConnectionDTO is a generic GraphQL connection of raw nodes.
type ConnectionDTO struct {
	Nodes    []json.RawMessage `json:"nodes"`
	PageInfo PageInfoDTO       `json:"pageInfo"`
}

// ToPage converts a connection into a Page.
func (c ConnectionDTO) ToPage() Page {
	p := Page{Nodes: c.Nodes, HasNextPage: c.PageInfo.HasNextPage}
	if c.PageInfo.EndCursor != nil {
		p.EndCursor = *c.PageInfo.EndCursor
	}
	return p
}

// ActorDTO is an author or assignee node.
type ActorDTO struct {
	Login string `json:"login"`
	URL   string `json:"url"`
}

// LabelDTO is a label node.
type LabelDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// RepositoryDTO is the owning repository of an issue or pull request.
type RepositoryDTO struct {
	NameWithOwner string `json:"nameWithOwner"`
	URL           string `json:"url"`
}

// ReviewDTO is a pull request review node.
type ReviewDTO struct {
	State  string `json:"state"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
}

// IssueContentDTO is the content of an issue project item.
type IssueContentDTO struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	Body      string    `json:"body"`
	CreatedAt *string   `json:"createdAt"`
	UpdatedAt *string   `json:"updatedAt"`
	ClosedAt  *string   `json:"closedAt"`
	Author    *ActorDTO `json:"author"`
	Assignees struct {
		Nodes []ActorDTO `json:"nodes"`
	} `json:"assignees"`
	Labels struct {
		Nodes []LabelDTO `json:"nodes"`
	} `json:"labels"`
	Repository *RepositoryDTO   `json:"repository"`
	Parent     *IssueContentDTO `json:"parent"`
}

// PullRequestDTO is a pull request node, both as project item content and as a
// direct repository node.
type PullRequestDTO struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	Body      *string   `json:"body"`
	CreatedAt *string   `json:"createdAt"`
	UpdatedAt *string   `json:"updatedAt"`
	ClosedAt  *string   `json:"closedAt"`
	MergedAt  *string   `json:"mergedAt"`
	Merged    bool      `json:"merged"`
	Author    *ActorDTO `json:"author"`
	Assignees struct {
		Nodes []ActorDTO `json:"nodes"`
	} `json:"assignees"`
	Labels struct {
		Nodes []LabelDTO `json:"nodes"`
	} `json:"labels"`
	Repository   *RepositoryDTO `json:"repository"`
	BaseRefName  string         `json:"baseRefName"`
	HeadRefName  string         `json:"headRefName"`
	Additions    int            `json:"additions"`
	Deletions    int            `json:"deletions"`
	ChangedFiles int            `json:"changedFiles"`
	Reviews      struct {
		Nodes []ReviewDTO `json:"nodes"`
	} `json:"reviews"`
}

// FieldValueDTO is a project item field value. Only iteration values carry data.
type FieldValueDTO struct {
	IterationID string `json:"iterationId"`
	Field       *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"field"`
}

// ProjectItemDTO is a project item envelope. Content is kept raw because its
// shape depends on the item type.
type ProjectItemDTO struct {
	Content     json.RawMessage `json:"content"`
	FieldValues struct {
		Nodes []FieldValueDTO `json:"nodes"`
	} `json:"fieldValues"`
}

// HasContent reports whether the item carries content of the queried type.
// Draft items and fragments of the other type decode as null or {}.
func (p ProjectItemDTO) HasContent() bool {
	c := string(p.Content)
	return c != "" && c != "null" && c != "{}"
}

// IterationDTO is an iteration from a project's iteration field configuration.
type IterationDTO struct {
	ID        string  `json:"id"`
	Title     *string `json:"title"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Duration  *int    `json:"duration"`
}

// IterationFieldDTO is a project field node; non-iteration fields decode empty.
type IterationFieldDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Configuration *struct {
		Iterations []IterationDTO `json:"iterations"`
	} `json:"configuration"`
}
