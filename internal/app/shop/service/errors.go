package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryHasProducts   = errors.New("category has products and cannot be deleted")
	ErrCategoryParentInvalid = errors.New("parent must be a root category")
	ErrCategoryExists        = errors.New("category already exists")
	ErrProductNotFound       = errors.New("product not found")
	ErrRatingNotFound        = errors.New("rating not found")
	ErrReviewNotFound        = errors.New("review not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUnauthorized          = errors.New("you are not authorized to use this method")
)
