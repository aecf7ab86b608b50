// Package services defines the business logic for users, pets, campaigns,
// payments, adoption requests, and dashboards. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPetNotFound indicates that the requested pet does not exist.
	ErrPetNotFound = errors.New("pet not found")

	// ErrCampaignNotFound indicates that the requested donation campaign
	// does not exist, or that a payment referenced a campaign id that does
	// not resolve.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrPaymentNotFound indicates that the requested ledger entry does not
	// exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrRequestNotFound indicates that the requested adoption request does
	// not exist.
	ErrRequestNotFound = errors.New("adoption request not found")

	// ErrInvalidAmount is returned when a donation amount is zero or
	// negative. Nothing is persisted in that case.
	ErrInvalidAmount = errors.New("donation amount must be positive")

	// ErrInvalidStatus is returned when an adoption-request transition names
	// a target outside {accepted, rejected}.
	ErrInvalidStatus = errors.New("target status must be accepted or rejected")

	// ErrAlreadyDecided is returned when an adoption request has already
	// left the pending state; the stored status is left unchanged.
	ErrAlreadyDecided = errors.New("adoption request already decided")

	// ErrCampaignPaused is returned when a donation targets a campaign that
	// is not currently accepting donations.
	ErrCampaignPaused = errors.New("campaign is paused")

	// ErrMissingField is returned when a create payload lacks a required
	// field (e.g. a pet without a name, a payment without a campaign).
	ErrMissingField = errors.New("required field missing")
)
