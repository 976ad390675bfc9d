package notes

import "context"

// BlockLocation addresses where a block is placed in the graph. Order is
// an index or the string "last".
type BlockLocation struct {
	ParentUID string `json:"parent-uid"`
	Order     any    `json:"order"`
}

// Block is the writable payload of a note block.
type Block struct {
	String  string `json:"string"`
	UID     string `json:"uid,omitempty"`
	Open    *bool  `json:"open,omitempty"`
	Heading int    `json:"heading,omitempty"`
}

// Page is the writable payload of a note page.
type Page struct {
	Title string `json:"title,omitempty"`
	UID   string `json:"uid,omitempty"`
}

func (c *Client) write(ctx context.Context, action string, body map[string]any) error {
	body["action"] = action
	_, err := c.call(ctx, "/api/graph/"+c.graph+"/write", body)
	return err
}

// CreateBlock appends a new block at the given location.
func (c *Client) CreateBlock(ctx context.Context, loc BlockLocation, block Block) error {
	return c.write(ctx, "create-block", map[string]any{
		"location": loc,
		"block":    block,
	})
}

// UpdateBlock rewrites an existing block identified by its UID.
func (c *Client) UpdateBlock(ctx context.Context, block Block) error {
	return c.write(ctx, "update-block", map[string]any{
		"block": block,
	})
}

// MoveBlock relocates an existing block.
func (c *Client) MoveBlock(ctx context.Context, uid string, loc BlockLocation) error {
	return c.write(ctx, "move-block", map[string]any{
		"location": loc,
		"block":    map[string]any{"uid": uid},
	})
}

// DeleteBlock removes a block and its children.
func (c *Client) DeleteBlock(ctx context.Context, uid string) error {
	return c.write(ctx, "delete-block", map[string]any{
		"block": map[string]any{"uid": uid},
	})
}

// CreatePage adds a new page with the given title.
func (c *Client) CreatePage(ctx context.Context, page Page) error {
	return c.write(ctx, "create-page", map[string]any{
		"page": page,
	})
}

// DeletePage removes a page by UID.
func (c *Client) DeletePage(ctx context.Context, uid string) error {
	return c.write(ctx, "delete-page", map[string]any{
		"page": map[string]any{"uid": uid},
	})
}
