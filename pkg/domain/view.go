package domain

// Button is a labelled action.
type Button struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Buttons returns all buttons in row order.
func (k Keyboard) Buttons() []Button {
	var out []Button
	for _, row := range k {
		out = append(out, row...)
	}
	return out
}

// Find returns the first button whose action matches.
func (k Keyboard) Find(a Action) (Button, bool) {
	for _, row := range k {
		for _, b := range row {
			if b.Action == a {
				return b, true
			}
		}
	}
	return Button{}, false
}

// View is what a renderer shows for one turn.
type View struct {
	Text     string   `json:"text"`
	Image    string   `json:"image,omitempty"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// Target identifies where a view is delivered. MessageID is the message that
// triggered the turn (a button press) and is zero for fresh text input.
type Target struct {
	ChatID    int64 `json:"chat_id"`
	UserID    int64 `json:"user_id"`
	MessageID int   `json:"message_id,omitempty"`
	HasImage  bool  `json:"has_image,omitempty"`
}

// MessageRef identifies a delivered message.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}
