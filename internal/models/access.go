package models

import (
	"fmt"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
)

// Role is an actor's relationship to a specific resume review
type Role string

const (
	RoleMentee    Role = "mentee"
	RoleMentor    Role = "mentor"
	RoleUnrelated Role = "unrelated"
)

// Action is something an actor may do to a resume review
type Action string

const (
	ActionView        Action = "view"
	ActionViewFile    Action = "viewFile"
	ActionUploadFile  Action = "uploadFile"
	ActionSetFeedback Action = "setFeedback"
	ActionComplete    Action = "complete"
	ActionClose       Action = "close"
)

// ActionSet is an ordered set of permitted actions
type ActionSet []Action

// Contains reports whether the set holds a
func (s ActionSet) Contains(a Action) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

type roleState struct {
	role   Role
	status ReviewStatus
}

var readOnlyActions = ActionSet{ActionView}

// permissions is the complete role/state table. Anything missing is denied.
var permissions = map[roleState]ActionSet{
	{RoleMentee, ReviewActive}:    {ActionView, ActionViewFile, ActionUploadFile},
	{RoleMentor, ReviewActive}:    {ActionView, ActionViewFile, ActionSetFeedback, ActionComplete, ActionClose},
	{RoleMentee, ReviewCompleted}: readOnlyActions,
	{RoleMentee, ReviewClosed}:    readOnlyActions,
	{RoleMentor, ReviewCompleted}: readOnlyActions,
	{RoleMentor, ReviewClosed}:    readOnlyActions,
}

// PermittedActions returns what role may do to a review in status.
// The result must not be modified.
func PermittedActions(role Role, status ReviewStatus) ActionSet {
	return permissions[roleState{role, status}]
}

// Authorize checks a single action. Actors who could never perform the action
// get ErrForbidden; parties who could, but not in the current state, get ErrInvalidState.
func Authorize(role Role, status ReviewStatus, action Action) error {
	if PermittedActions(role, status).Contains(action) {
		return nil
	}
	if role == RoleUnrelated {
		return apperrors.ForbiddenError("not a party to this review")
	}
	if !PermittedActions(role, ReviewActive).Contains(action) {
		return apperrors.ForbiddenError(fmt.Sprintf("%s cannot %s", role, action))
	}
	return apperrors.InvalidStateError("review", string(status))
}

// RoleFor derives the actor's role from the request backing a review
func RoleFor(actorID string, request *MentorshipRequest) Role {
	switch {
	case request == nil || actorID == "":
		return RoleUnrelated
	case actorID == request.RequesterID:
		return RoleMentee
	case actorID == request.MentorID:
		return RoleMentor
	default:
		return RoleUnrelated
	}
}
