package models

// GIFCandidate is one search result offered during reminder setup.
type GIFCandidate struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Draft is the in-progress reminder state accumulated across setup wizard
// steps. It is never persisted; only a confirmed draft produces a Reminder.
type Draft struct {
	GuildID    string
	EventName  string
	TargetTime string
	ChannelID  string
	CreatedBy  string
	Recurrence Recurrence
	TargetDate string

	Candidates []GIFCandidate
	Selected   int
}

// SelectedURL returns the URL of the currently highlighted candidate, or
// empty when there are none.
func (d *Draft) SelectedURL() string {
	if d.Selected < 0 || d.Selected >= len(d.Candidates) {
		return ""
	}
	return d.Candidates[d.Selected].URL
}

// Reminder converts a completed draft into the durable entity.
func (d *Draft) Reminder() *Reminder {
	return &Reminder{
		GuildID:    d.GuildID,
		EventName:  d.EventName,
		TargetTime: d.TargetTime,
		ChannelID:  d.ChannelID,
		CreatedBy:  d.CreatedBy,
		GIFURL:     d.SelectedURL(),
		Recurrence: d.Recurrence,
		TargetDate: d.TargetDate,
	}
}
