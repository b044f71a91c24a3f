package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `authoring-mirror keeps a local copy of a remote terminology authoring system by replaying its activity stream.

Core concepts:
- Branch: a path rooted at MAIN (MAIN, MAIN/A, MAIN/A/B). A child sees its parent's concepts as of its base tick.
- Concept: a JSON document identified by conceptId (or id), versioned per branch.
- Activity: {branchPath, commitComment, changes?}. Activities with changes are content edits; activities whose comment reads "<actor> performed merge of MAIN/X to MAIN/Y" are branch merges; anything else is skipped.

Typical workflow:
1) Feed activities: receive_activity for one event, receive_activity_log for a raw log (one JSON object per line, noise before the first '{' is ignored).
2) Inspect: list_branches, get_branch, get_concept, search_concepts.
3) Audit: get_recent_activity shows how each activity was classified.

Docs:
- mirror://docs/index
- mirror://docs/activity-format
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "mirror://docs/index",
		Name:        "docs_index",
		Title:       "authoring-mirror docs index",
		Description: "Entry point: what the mirror does and which tools to use.",
		Content: `# authoring-mirror

The mirror replays activities from a remote authoring system onto a local branch store.

## Tools

- receive_activity: replay one activity.
- receive_activity_log: replay a raw activity log in line order. Replay stops at the first failing line; earlier lines stay applied.
- list_branches / get_branch: inspect the branch tree and recent commits.
- get_concept / search_concepts: read concepts as a branch sees them.
- get_recent_activity: the journal of mirrored activities, newest first.

## Branches

Branches missing locally are created on first use, ancestors included.
`,
	},
	{
		URI:         "mirror://docs/activity-format",
		Name:        "docs_activity_format",
		Title:       "Activity format",
		Description: "Wire format of activities and how they are classified.",
		Content: `# Activity format

~~~json
{"branchPath": "MAIN/A", "commitComment": "edit", "changes": {"123": {"concept": {"conceptId": "123"}}}}
~~~

Classification, first match wins:

1. Non-empty changes: content change. Every concept document is applied to branchPath as one commit.
2. commitComment matching "<actor> performed merge of <source> to <target>" where both paths start with MAIN: branch merge. branchPath must equal target.
3. Anything else: unrecognized, logged and skipped.

In a log each line may carry a prefix such as a timestamp; the payload starts at the first '{'. Lines without '{' are ignored. Logs may be gzip or zstd compressed.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
