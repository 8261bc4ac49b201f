package nas

import (
	"encoding/json"
	"strings"
	"time"
)

// FileType is the closed set of catalog categories.
type FileType string

const (
	TypeVideo    FileType = "video"
	TypeMusic    FileType = "music"
	TypeDocument FileType = "document"
	TypeImage    FileType = "image"
	TypeArchive  FileType = "archive"
	TypeOther    FileType = "other"
)

// FileTypes lists every category in display order.
func FileTypes() []FileType {
	return []FileType{TypeVideo, TypeMusic, TypeDocument, TypeImage, TypeArchive, TypeOther}
}

// ParseFileType normalises a wire value; anything unrecognised becomes TypeOther.
func ParseFileType(value string) FileType {
	switch FileType(strings.ToLower(strings.TrimSpace(value))) {
	case TypeVideo:
		return TypeVideo
	case TypeMusic:
		return TypeMusic
	case TypeDocument:
		return TypeDocument
	case TypeImage:
		return TypeImage
	case TypeArchive:
		return TypeArchive
	default:
		return TypeOther
	}
}

// UnmarshalJSON accepts any string and normalises it.
func (t *FileType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseFileType(raw)
	return nil
}

// File mirrors a catalog entry returned by /api/files.
type File struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Type            FileType   `json:"type"`
	Path            string     `json:"path"`
	LastWriteTime   time.Time  `json:"lastWriteTime"`
	Bookmarked      bool       `json:"bookmarked"`
	BookmarkCount   int        `json:"bookmarkCount"`
	AccessCount     int        `json:"accessCount"`
	Recommendations int        `json:"recommendations"`
	WatchedAt       *time.Time `json:"watchedAt,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Description     string     `json:"description,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	URL             string     `json:"url,omitempty"`
}

// Clone returns a deep copy so callers can mutate freely.
func (f File) Clone() File {
	dup := f
	if f.WatchedAt != nil {
		ts := *f.WatchedAt
		dup.WatchedAt = &ts
	}
	if f.Tags != nil {
		dup.Tags = append([]string(nil), f.Tags...)
	}
	return dup
}

// HasTag reports whether tag is attached to the file.
func (f File) HasTag(tag string) bool {
	for _, existing := range f.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// ViewMode selects grid or list rendering.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Settings holds per-user display preferences stored server-side.
type Settings struct {
	DarkMode    bool     `json:"darkMode"`
	AutoPlay    bool     `json:"autoPlay"`
	DefaultView ViewMode `json:"defaultView"`
}

// SettingsPatch carries a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	DarkMode    *bool     `json:"darkMode,omitempty"`
	AutoPlay    *bool     `json:"autoPlay,omitempty"`
	DefaultView *ViewMode `json:"defaultView,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.DarkMode == nil && p.AutoPlay == nil && p.DefaultView == nil
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.AutoPlay != nil {
		s.AutoPlay = *p.AutoPlay
	}
	if p.DefaultView != nil {
		s.DefaultView = *p.DefaultView
	}
	return s
}

// User mirrors /api/user.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Setting  Settings `json:"setting"`
}

// Direction is a sort direction for paged listings.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// PageRequest is the cursor sent with /api/files.
type PageRequest struct {
	Page      int       `json:"page"`
	Size      int       `json:"size"`
	SortBy    string    `json:"sortBy"`
	Direction Direction `json:"direction"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the append-only chat log.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// RecommendationGroup is a server-computed set of files with the reason they were grouped.
type RecommendationGroup struct {
	Files  []File `json:"files"`
	Reason string `json:"reason"`
}

// Credentials are posted to /api/auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup is posted to /api/auth/signup.
type Signup struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the session token issued at login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
