package models

import (
	"slices"
	"time"

	"github.com/vidtube/backend/internal/apperr"
)

var (
	// ErrVideoInPlaylist is returned when adding a video that is already a member.
	ErrVideoInPlaylist = apperr.New(apperr.InvalidArgument, "video already in playlist")
	// ErrVideoNotInPlaylist is returned when removing a video that is not a member.
	ErrVideoNotInPlaylist = apperr.New(apperr.InvalidArgument, "video not in playlist")
)

// Account represents a registered user and the channel they publish under.
type Account struct {
	ID            string
	Username      string
	Email         string
	DisplayName   string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	// WatchHistory holds video ids, most recent first.
	WatchHistory []string
	// RefreshToken is the single refresh token currently trusted for the account.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the safe projection of an Account attached to authenticated requests.
type Identity struct {
	AccountID     string    `json:"_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity returns the account without its password hash or refresh token.
func (a Account) Identity() Identity {
	return Identity{
		AccountID:     a.ID,
		Username:      a.Username,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

// Video is an uploaded video owned by a channel.
type Video struct {
	ID           string    `json:"_id"`
	OwnerID      string    `json:"owner"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (v Video) OwnerAccountID() string { return v.OwnerID }

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"owner"`
	VideoID   string    `json:"video"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Comment) OwnerAccountID() string { return c.OwnerID }

// Tweet is a short-form post on a channel.
type Tweet struct {
	ID        string    `json:"_id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Tweet) OwnerAccountID() string { return t.OwnerID }

// LikeTargetKind names the kind of entity a like points at.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// Valid reports whether k is one of the known target kinds.
func (k LikeTargetKind) Valid() bool {
	switch k {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// LikeTarget identifies exactly one likeable entity.
type LikeTarget struct {
	Kind LikeTargetKind
	ID   string
}

// Like records that an account liked one video, comment or tweet. Exactly one
// of VideoID, CommentID and TweetID is set.
type Like struct {
	ID        string    `json:"_id"`
	LikedBy   string    `json:"likedBy"`
	VideoID   string    `json:"video,omitempty"`
	CommentID string    `json:"comment,omitempty"`
	TweetID   string    `json:"tweet,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewLike builds a like with the slot for target populated.
func NewLike(id, actorID string, target LikeTarget, createdAt time.Time) Like {
	like := Like{ID: id, LikedBy: actorID, CreatedAt: createdAt}
	switch target.Kind {
	case LikeTargetVideo:
		like.VideoID = target.ID
	case LikeTargetComment:
		like.CommentID = target.ID
	case LikeTargetTweet:
		like.TweetID = target.ID
	}
	return like
}

// Target reports which entity the like points at.
func (l Like) Target() LikeTarget {
	switch {
	case l.VideoID != "":
		return LikeTarget{Kind: LikeTargetVideo, ID: l.VideoID}
	case l.CommentID != "":
		return LikeTarget{Kind: LikeTargetComment, ID: l.CommentID}
	default:
		return LikeTarget{Kind: LikeTargetTweet, ID: l.TweetID}
	}
}

// Playlist is an ordered, duplicate-free list of videos curated by an account.
type Playlist struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Playlist) OwnerAccountID() string { return p.OwnerID }

// HasVideo reports whether videoID is a member of the playlist.
func (p Playlist) HasVideo(videoID string) bool {
	return slices.Contains(p.VideoIDs, videoID)
}

// AddVideo appends videoID to the playlist.
func (p *Playlist) AddVideo(videoID string) error {
	if p.HasVideo(videoID) {
		return ErrVideoInPlaylist
	}
	p.VideoIDs = append(slices.Clone(p.VideoIDs), videoID)
	return nil
}

// RemoveVideo drops videoID from the playlist, keeping the order of the rest.
func (p *Playlist) RemoveVideo(videoID string) error {
	idx := slices.Index(p.VideoIDs, videoID)
	if idx < 0 {
		return ErrVideoNotInPlaylist
	}
	p.VideoIDs = slices.Delete(slices.Clone(p.VideoIDs), idx, idx+1)
	return nil
}

// Subscription links a subscriber to a channel account.
type Subscription struct {
	ID           string    `json:"_id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
