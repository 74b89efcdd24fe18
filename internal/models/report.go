package model

import "time"

type ReportReason string

const (
	ReasonSpam          ReportReason = "SPAM"
	ReasonWrongInfo     ReportReason = "WRONG_INFO"
	ReasonInappropriate ReportReason = "INAPPROPRIATE"
	ReasonOther         ReportReason = "OTHER"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

type Report struct {
	ID           string       `json:"id"`
	ReporterID   string       `json:"reporterId"`
	Reporter     *UserCreator `json:"reporter,omitempty"`
	CoordinateID *string      `json:"coordinateId,omitempty"`
	CommentID    *string      `json:"commentId,omitempty"`
	Reason       ReportReason `json:"reason"`
	Description  string       `json:"description,omitempty"`
	Status       ReportStatus `json:"status"`
	AdminNote    string       `json:"adminNote,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	ResolvedAt   *time.Time   `json:"resolvedAt,omitempty"`
	ResolvedBy   *string      `json:"resolvedBy,omitempty"`
}

type CreateReportRequest struct {
	Reason      ReportReason `json:"reason" validate:"required,oneof=SPAM WRONG_INFO INAPPROPRIATE OTHER"`
	Description string       `json:"description" validate:"max=1000"`
}

type ResolveReportRequest struct {
	Action    string `json:"action" validate:"required,oneof=resolve dismiss"`
	AdminNote string `json:"adminNote" validate:"max=1000"`
}
