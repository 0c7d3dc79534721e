package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/identity"
)

// Uploader is the slice of the media host client the handler needs.
type Uploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (string, error)
}

type ProfileHandler struct {
	profiles identity.ProfileStore
	uploader Uploader
	timeout  time.Duration
}

func NewProfileHandler(profiles identity.ProfileStore, uploader Uploader, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		uploader: uploader,
		timeout:  timeout,
	}
}

type UpdateProfileRequestDTO struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type PhotoResponseDTO struct {
	PhotoURL string `json:"photoURL"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile_not_found", "no profile for this user")
			return
		}
		log.Printf("profile get failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req UpdateProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.FullName == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "invalid_profile", "fullName and email are required")
		return
	}

	// Role and photo survive the update; only display fields change here.
	profile := &identity.Profile{UserID: userID, FullName: req.FullName, Email: req.Email}
	if existing, err := h.profiles.Get(ctx, userID); err == nil {
		profile.Role = existing.Role
		profile.PhotoURL = existing.PhotoURL
		profile.CreatedAt = existing.CreatedAt
	}

	if err := h.profiles.Upsert(ctx, profile); err != nil {
		log.Printf("profile upsert failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing file part")
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(ctx, header.Filename, file)
	if err != nil {
		log.Printf("photo upload failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusBadGateway, "upload_failed", "failed to upload image")
		return
	}

	if err := h.profiles.SetPhotoURL(ctx, userID, url); err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile_not_found", "no profile for this user")
			return
		}
		log.Printf("photo url save failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save photo url")
		return
	}

	respondJSON(w, http.StatusOK, PhotoResponseDTO{PhotoURL: url})
}

// ListUsers serves the admin user list. Non-admin callers get 403.
func (h *ProfileHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	requester, err := h.profiles.Get(ctx, userID)
	if err != nil || !requester.IsAdmin() {
		respondError(w, http.StatusForbidden, "forbidden", "admin role required")
		return
	}

	profiles, err := h.profiles.List(ctx)
	if err != nil {
		log.Printf("profile list failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list users")
		return
	}

	respondJSON(w, http.StatusOK, profiles)
}
