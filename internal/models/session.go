package models

// Session represents an authenticated platform user
type Session struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
}

// AcceptResult is returned by the orchestrated accept. RedirectTarget is empty
// (and Redirect false) when the review could not be located after acceptance.
type AcceptResult struct {
	Request        *MentorshipRequest `json:"request"`
	Review         *ResumeReview      `json:"review,omitempty"`
	Redirect       bool               `json:"redirect"`
	RedirectTarget string             `json:"redirectTarget,omitempty"`
}
