package controllers

import (
	"net/http"

	"github.com/shopease/shopease-backend/api/responses"
	"github.com/shopease/shopease-backend/api/validators"
	deliverysvc "github.com/shopease/shopease-backend/internal/delivery"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/logger"
)

type setZoneActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// DeliveryCheck answers whether a pincode is deliverable. Public; shoppers
// check before committing to an address.
func DeliveryCheck(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		pincode := validators.QueryString(r, "pincode")
		result, err := svc.Check(r.Context(), pincode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type checkDeliveryRequest struct {
	City    string `json:"city"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

// DeliveryCheckBody is the POST variant of the serviceability check. When a
// city is supplied the whole destination is validated, so a rejection names
// the failing constraint and lists the valid options.
func DeliveryCheckBody(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload checkDeliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.City != "" {
			if err := svc.ValidateDestination(r.Context(), payload.City, payload.Pincode); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.Check(r.Context(), payload.Pincode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminZoneList lists every configured delivery zone.
func AdminZoneList(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		zones, err := svc.ListZones(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, zones)
	}
}

// AdminZoneCreate adds a serviceable pincode.
func AdminZoneCreate(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload deliverysvc.CreateZoneRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zone, err := svc.CreateZone(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, zone)
	}
}

type bulkCreateZonesRequest struct {
	Zones []deliverysvc.CreateZoneRequest `json:"zones" validate:"required,min=1,dive"`
}

// AdminZoneBulkCreate imports a batch of zones. Rows that collide or fail
// validation are reported back without rolling back the rows that landed.
func AdminZoneBulkCreate(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		var payload bulkCreateZonesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.BulkCreateZones(r.Context(), payload.Zones)
		if err != nil && len(created) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no zones imported"))
			return
		}

		body := map[string]any{
			"created": created,
			"skipped": len(payload.Zones) - len(created),
		}
		if err != nil {
			ctx := logg.WithField(r.Context(), "error", err.Error())
			logg.Warn(ctx, "zone bulk import partially failed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, body)
	}
}

// AdminZoneSetActive toggles a zone without deleting its history.
func AdminZoneSetActive(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		zoneID, err := uuidParam(r, "zoneId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setZoneActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zone, err := svc.SetZoneActive(r.Context(), zoneID, payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, zone)
	}
}

// AdminZoneDelete removes a zone entirely.
func AdminZoneDelete(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		zoneID, err := uuidParam(r, "zoneId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteZone(r.Context(), zoneID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
