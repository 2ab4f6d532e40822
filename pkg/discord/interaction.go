package discord

// Interaction types delivered to the interactions endpoint.
const (
	InteractionTypePing        = 1
	InteractionTypeCommand     = 2
	InteractionTypeComponent   = 3
	InteractionTypeModalSubmit = 5
)

// Interaction response types.
const (
	ResponseTypePong          = 1
	ResponseTypeMessage       = 4
	ResponseTypeUpdateMessage = 7
	ResponseTypeModal         = 9
)

// PermissionAdministrator is the administrator bit in a member's resolved
// permission set.
const PermissionAdministrator = 1 << 3

// User identifies the acting member.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Member carries the actor plus the guild-level authorization inputs: role
// IDs and the resolved permission bitset (decimal string).
type Member struct {
	User        User     `json:"user"`
	Roles       []string `json:"roles"`
	Permissions string   `json:"permissions"`
}

// InteractionData is the command- or component-specific payload.
type InteractionData struct {
	Name       string      `json:"name,omitempty"`       // command interactions
	CustomID   string      `json:"custom_id,omitempty"`  // components and modals
	Values     []string    `json:"values,omitempty"`     // select menu choice
	Components []ActionRow `json:"components,omitempty"` // modal submissions
}

// Interaction is an incoming interaction callback.
type Interaction struct {
	ID        string          `json:"id"`
	Type      int             `json:"type"`
	GuildID   string          `json:"guild_id"`
	ChannelID string          `json:"channel_id"`
	Member    Member          `json:"member"`
	Data      InteractionData `json:"data"`
}

// TextInputValue finds a submitted modal field by custom ID. It returns an
// empty string when the field is absent, which covers optional inputs.
func (i *Interaction) TextInputValue(customID string) string {
	for _, row := range i.Data.Components {
		for _, comp := range row.Components {
			if comp.CustomID == customID {
				return comp.Value
			}
		}
	}
	return ""
}

// Component is a button, select menu, or text input.
type Component struct {
	Type        int            `json:"type"`
	Style       int            `json:"style,omitempty"`
	Label       string         `json:"label,omitempty"`
	CustomID    string         `json:"custom_id,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Value       string         `json:"value,omitempty"`
	Required    *bool          `json:"required,omitempty"`
	MinLength   int            `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
}

// Component type values.
const (
	ComponentTypeActionRow  = 1
	ComponentTypeButton     = 2
	ComponentTypeSelectMenu = 3
	ComponentTypeTextInput  = 4
)

// Button style values.
const (
	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleSuccess   = 3
	ButtonStyleDanger    = 4
)

// SelectOption is one entry of a select menu.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// ActionRow groups components in a message or modal.
type ActionRow struct {
	Type       int         `json:"type"`
	Components []Component `json:"components"`
}

// NewActionRow wraps components in a row.
func NewActionRow(components ...Component) ActionRow {
	return ActionRow{Type: ComponentTypeActionRow, Components: components}
}

// Embed mirrors the embed shape used in responses.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Image       *embedImage  `json:"image,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

// WithImage sets the embed image URL.
func (e Embed) WithImage(url string) Embed {
	if url != "" {
		e.Image = &embedImage{URL: url}
	}
	return e
}

// WithFooter sets the embed footer text.
func (e Embed) WithFooter(text string) Embed {
	if text != "" {
		e.Footer = &embedFooter{Text: text}
	}
	return e
}

// ResponseData is the message or modal body of an interaction response.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []ActionRow `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"` // modals
	Title      string      `json:"title,omitempty"`     // modals
}

// MessageFlagEphemeral makes a response visible only to the acting user.
const MessageFlagEphemeral = 1 << 6

// InteractionResponse is the reply written back to the interactions
// endpoint request.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// EphemeralMessage builds a plain ephemeral text response.
func EphemeralMessage(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseTypeMessage,
		Data: &ResponseData{Content: content, Flags: MessageFlagEphemeral},
	}
}

// UpdateMessage builds a response that edits the message the component
// belongs to.
func UpdateMessage(data *ResponseData) *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypeUpdateMessage, Data: data}
}
