package controllers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/api/responses"
	"github.com/orangegegege/equipment-manager/api/validators"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	mediasvc "github.com/orangegegege/equipment-manager/internal/media"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

const multipartMaxMemory = 16 << 20

// itemResponse wraps an item with the image degradation flag. A storage
// outage must not block inventory management, so a failed upload reports
// image_upload_failed instead of erroring the whole request.
type itemResponse struct {
	Item              *inventory.ItemDTO `json:"item"`
	ImageUploadFailed bool               `json:"image_upload_failed,omitempty"`
}

type itemImage struct {
	contentType string
	data        []byte
}

// AdminItemCreate registers a new item, accepting either a JSON body or a
// multipart form with a "payload" JSON part and an optional "image" part.
func AdminItemCreate(items inventory.Service, media mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if items == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var input inventory.CreateItemInput
		image, err := decodeItemRequest(r, &input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := items.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := itemResponse{Item: item}
		if image != nil {
			resp.Item, resp.ImageUploadFailed, err = attachItemImage(r, items, media, logg, item, *image)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// AdminItemUpdate applies a partial update, with the same optional image
// handling as creation.
func AdminItemUpdate(items inventory.Service, media mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if items == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var input inventory.UpdateItemInput
		image, err := decodeItemRequest(r, &input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := items.UpdateItem(r.Context(), itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := itemResponse{Item: item}
		if image != nil {
			resp.Item, resp.ImageUploadFailed, err = attachItemImage(r, items, media, logg, item, *image)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, resp)
	}
}

// AdminItemDelete removes an item outright. Its borrow records survive it;
// its stored image does not.
func AdminItemDelete(items inventory.Service, media mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if items == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		item, err := items.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := items.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Best effort: a stranded image object costs storage, not
		// correctness.
		if media != nil && item.ImageURL != nil && *item.ImageURL != "" {
			if err := media.RemoveItemImage(r.Context(), *item.ImageURL); err != nil && logg != nil {
				logg.Warn(logg.WithItemID(r.Context(), itemID.String()), "deleting item image object failed")
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type overrideRequest struct {
	BorrowedQty *int `json:"borrowed_qty" validate:"required"`
}

// AdminItemOverride pins the borrowed counter to an exact value.
func AdminItemOverride(items inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if items == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload overrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := items.Override(r.Context(), itemID, *payload.BorrowedQty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// decodeItemRequest reads either a plain JSON body or a multipart form. The
// returned image is nil when the request carried none.
func decodeItemRequest(r *http.Request, dest any) (*itemImage, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		return decodeMultipartItemRequest(r, dest)
	}
	if err := validators.DecodeJSONBody(r, dest); err != nil {
		return nil, err
	}
	return nil, nil
}

func decodeMultipartItemRequest(r *http.Request, dest any) (*itemImage, error) {
	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	payload := strings.TrimSpace(r.FormValue("payload"))
	if payload == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payload part is required")
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload part").WithDetails(map[string]any{"error": err.Error()})
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image part")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading image part")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &itemImage{contentType: contentType, data: data}, nil
}

// attachItemImage uploads the image and stamps its URL on the item. A
// rejected image is the caller's mistake and fails the request; a storage
// failure degrades to the item without an image.
func attachItemImage(r *http.Request, items inventory.Service, media mediasvc.Service, logg *logger.Logger, item *inventory.ItemDTO, image itemImage) (*inventory.ItemDTO, bool, error) {
	if media == nil {
		return item, true, nil
	}

	result, err := media.UploadItemImage(r.Context(), item.ID, mediasvc.UploadInput{
		ContentType: image.contentType,
		Data:        image.data,
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return item, false, err
		}
		if logg != nil {
			logg.Warn(logg.WithItemID(r.Context(), item.ID.String()), "item saved without image")
		}
		return item, true, nil
	}

	updated, err := items.UpdateItem(r.Context(), item.ID, inventory.UpdateItemInput{ImageURL: &result.URL})
	if err != nil {
		if logg != nil {
			logg.Error(logg.WithItemID(r.Context(), item.ID.String()), "stamping image url failed", err)
		}
		return item, true, nil
	}
	return updated, false, nil
}
