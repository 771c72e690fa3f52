package model

import "gorm.io/gorm"

// File is the metadata row for an uploaded object. The bytes themselves live
// in the blob store under StorageKey; different users may upload files with
// the same name so the storage key is always a fresh random value.
type File struct {
	gorm.Model
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`
	Owner       User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Filename    string `gorm:"size:255;not null" json:"filename"`
	StorageKey  string `gorm:"uniqueIndex;size:191;not null" json:"-"`
	Size        int64  `json:"size"`
	MimeType    string `gorm:"size:128" json:"mime_type"`
	Description string `gorm:"size:1024" json:"description"`
}
