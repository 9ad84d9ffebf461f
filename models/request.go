package models

import "time"

// RequestStatus is the state of a role request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

// RequestAction is what a reviewer does with a pending request
type RequestAction string

const (
	ActionAccept RequestAction = "accept"
	ActionReject RequestAction = "reject"
)

// Target returns the status an action resolves a request to
func (a RequestAction) Target() (RequestStatus, bool) {
	switch a {
	case ActionAccept:
		return RequestAccepted, true
	case ActionReject:
		return RequestRejected, true
	}
	return "", false
}

type RoleRequest struct {
	ID            string        `json:"_id" gorm:"primaryKey;size:36"`
	UserID        string        `json:"userId" gorm:"index;size:36;not null"`
	UserName      string        `json:"userName" gorm:"not null"`
	UserEmail     string        `json:"userEmail" gorm:"not null"`
	RequestType   UserRole      `json:"requestType" gorm:"not null"`
	RequestStatus RequestStatus `json:"requestStatus" gorm:"index;not null;default:'pending'"`
	RequestTime   time.Time     `json:"requestTime"`
}
