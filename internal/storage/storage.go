package storage

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrGalleryNotFound  = errors.New("gallery not found")
	ErrAlbumNotFound    = errors.New("album not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrChannelNotFound  = errors.New("chat channel not found")
	ErrMessageNotFound  = errors.New("chat message not found")
	ErrorNoSuchKey      = errors.New("no such key")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileNotFound    = errors.New("file not found")
)
