package model

import "time"

// Violation represents a row in the `violation` table. A violation is
// unique by name and classifies an offence by type and by the article
// of the traffic code it falls under; both references are required.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – unique violation name.
//  ViolationTypeID – FK into violation_type.id.
//  ArticleID       – FK into article.id.
//  Type            – violation type name, filled on reads.
//  ArticleNumber   – article number, filled on reads.
//  ArticleName     – article name, filled on reads.
//  Version         – optimistic concurrency counter, starts at 1.
//  LockedBy        – username of the current soft-lock holder (nil when unlocked).
//  LockedAt        – soft-lock acquisition time (nil when unlocked).
type Violation struct {
	ID              int64      `json:"id"`             // violation.id
	Name            string     `json:"name"`           // violation.name
	ViolationTypeID int64      `json:"-"`              // violation.violation_type_id
	ArticleID       int64      `json:"-"`              // violation.article_id
	Type            string     `json:"type"`           // joined violation_type.name
	ArticleNumber   string     `json:"article_number"` // joined article.number
	ArticleName     string     `json:"article_name"`   // joined article.name
	Version         int64      `json:"version"`        // violation.version
	LockedBy        *string    `json:"locked_by"`      // violation.locked_by (nullable)
	LockedAt        *time.Time `json:"-"`              // violation.locked_at (nullable)
	CreatedAt       time.Time  `json:"-"`              // violation.created_at
	UpdatedAt       *time.Time `json:"-"`              // violation.updated_at (nullable)
}
