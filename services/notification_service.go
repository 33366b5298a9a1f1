package services

import (
	"context"

	"github.com/yeremiapane/storefront-notify/models"
	"github.com/yeremiapane/storefront-notify/store"
	"github.com/yeremiapane/storefront-notify/utils"
)

// Audience filter values accepted by broadcast sends. Anything else
// resolves to an empty recipient set.
const (
	FilterAll        = "all"
	FilterRegistered = "registered"
	FilterGuests     = "guests"
)

// AssetUploader stores an uploaded image and returns its public URL.
type AssetUploader interface {
	Upload(ctx context.Context, content []byte, filename, mimeType string) (string, error)
}

// SendRequest is a validated-by-the-service send command. Image holds the
// raw attachment bytes when the request was multipart.
type SendRequest struct {
	CustomerID int64
	Title      string
	Message    string
	Link       string
	UserFilter string
	Image      []byte
	ImageName  string
	ImageMime  string
}

// SendResult reports what a Send actually did.
type SendResult struct {
	// Notification is the record appended to the local feed; zero value
	// when the send targeted a single remote customer instead.
	Notification models.Notification
	Recipients   int
}

// NotificationService orchestrates sends: validation, optional image
// upload, recipient resolution and persistence to the local feed or the
// remote customer metafield.
type NotificationService struct {
	store        *store.NotificationStore
	shopify      *ShopifyService
	uploader     AssetUploader
	remoteFanout bool
}

// NewNotificationService wires the service. uploader may be nil, in which
// case image uploads fall back to the Shopify file endpoint. remoteFanout
// enables per-customer metafield delivery for broadcast sends.
func NewNotificationService(st *store.NotificationStore, shopify *ShopifyService, uploader AssetUploader, remoteFanout bool) *NotificationService {
	return &NotificationService{
		store:        st,
		shopify:      shopify,
		uploader:     uploader,
		remoteFanout: remoteFanout,
	}
}

// Send validates the request, uploads the attachment when present and
// delivers the notification. A send with a CustomerID goes to that
// customer's metafield; anything else lands in the local feed once,
// however large the resolved audience is.
func (ns *NotificationService) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if req.Title == "" || req.Message == "" {
		return SendResult{}, NewValidationError("title and message are required")
	}

	imageURL := ns.uploadImage(ctx, req)

	record := models.NewNotification(req.Title, req.Message, imageURL, req.Link)
	entry := models.MetafieldNotification{
		Title:   req.Title,
		Message: req.Message,
		Image:   imageURL,
		Link:    req.Link,
		Date:    record.Timestamp,
	}

	if req.CustomerID != 0 {
		if err := ns.deliverRemote(ctx, req.CustomerID, req.Title, entry); err != nil {
			return SendResult{}, err
		}
		utils.InfoLogger.Printf("notification delivered to customer %d", req.CustomerID)
		return SendResult{Recipients: 1}, nil
	}

	customers, emails, err := ns.resolveRecipients(ctx, req.UserFilter)
	if err != nil {
		return SendResult{}, err
	}

	delivered := 0
	if ns.remoteFanout {
		// Best effort per customer: one failed round trip must not
		// abort the rest of the audience.
		for _, c := range customers {
			if err := ns.deliverRemote(ctx, c.ID, req.Title, entry); err != nil {
				utils.ErrorLogger.Errorf("deliver to customer %d failed: %v", c.ID, err)
				continue
			}
			delivered++
		}
	}

	stored := ns.store.Append(record)
	utils.InfoLogger.Printf("notification %d stored, audience %q resolved to %d recipients (%d remote deliveries)",
		stored.ID, req.UserFilter, len(emails), delivered)

	return SendResult{Notification: stored, Recipients: len(emails)}, nil
}

// uploadImage stores the attachment and returns its URL. Upload failures
// are downgraded to a warning; the send continues without an image.
func (ns *NotificationService) uploadImage(ctx context.Context, req SendRequest) string {
	if len(req.Image) == 0 {
		return ""
	}

	var (
		url string
		err error
	)
	switch {
	case ns.uploader != nil:
		url, err = ns.uploader.Upload(ctx, req.Image, req.ImageName, req.ImageMime)
	case ns.shopify != nil:
		url, err = ns.shopify.UploadFile(ctx, req.Image, req.ImageName, req.ImageMime)
	default:
		return ""
	}
	if err != nil {
		utils.ErrorLogger.Errorf("image upload failed, sending without image: %v", err)
		return ""
	}
	return url
}

// deliverRemote tags the customer and prepends the entry to their
// notifications metafield. The read-modify-write cycle has no remote
// compare-and-set; concurrent sends for one customer can lose updates
// (last writer wins).
func (ns *NotificationService) deliverRemote(ctx context.Context, customerID int64, tag string, entry models.MetafieldNotification) error {
	if err := ns.shopify.Tag(ctx, customerID, tag); err != nil {
		return err
	}
	list, err := ns.shopify.GetNotificationsMetafield(ctx, customerID)
	if err != nil {
		return err
	}
	list = append([]models.MetafieldNotification{entry}, list...)
	return ns.shopify.PutNotificationsMetafield(ctx, customerID, list)
}

// resolveRecipients maps a filter value to its audience. Guests have no
// Shopify customer record, so they only ever appear in the email list.
func (ns *NotificationService) resolveRecipients(ctx context.Context, filter string) ([]ShopifyCustomer, []string, error) {
	switch filter {
	case FilterAll, FilterRegistered:
		customers, err := ns.shopify.ListAllCustomers(ctx)
		if err != nil {
			return nil, nil, err
		}
		emails := make([]string, 0, len(customers))
		for _, c := range customers {
			if c.Email != "" {
				emails = append(emails, c.Email)
			}
		}
		return customers, emails, nil
	case FilterGuests:
		emails, err := ns.shopify.GuestEmails(ctx)
		if err != nil {
			return nil, nil, err
		}
		return nil, emails, nil
	case "":
		return nil, nil, nil
	default:
		// Unknown filters resolve to an empty audience, not an error.
		utils.InfoLogger.Printf("unknown user filter %q, resolving to empty audience", filter)
		return nil, nil, nil
	}
}

// ListAll returns the local feed, newest first.
func (ns *NotificationService) ListAll() []models.Notification {
	return ns.store.ListAll()
}

// CountUnread returns the number of unread notifications in the feed.
func (ns *NotificationService) CountUnread() int {
	return ns.store.CountUnread()
}

// MarkAllRead marks every notification in the feed as read.
func (ns *NotificationService) MarkAllRead() {
	ns.store.MarkAllRead()
}

// DeleteByID removes one notification; unknown IDs are a silent no-op.
func (ns *NotificationService) DeleteByID(id int64) {
	ns.store.DeleteByID(id)
}

// Clear empties the local feed.
func (ns *NotificationService) Clear() {
	ns.store.Clear()
}

// ListRemote reads a customer's notification list from their metafield.
func (ns *NotificationService) ListRemote(ctx context.Context, customerID int64) ([]models.MetafieldNotification, error) {
	return ns.shopify.GetNotificationsMetafield(ctx, customerID)
}

// ClearRemote overwrites a customer's metafield with an empty list.
func (ns *NotificationService) ClearRemote(ctx context.Context, customerID int64) error {
	return ns.shopify.PutNotificationsMetafield(ctx, customerID, []models.MetafieldNotification{})
}
