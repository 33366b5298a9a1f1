package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/storefront-notify/services"
	"github.com/yeremiapane/storefront-notify/utils"
)

type NotificationController struct {
	service *services.NotificationService
}

func NewNotificationController(service *services.NotificationService) *NotificationController {
	return &NotificationController{service: service}
}

type sendBody struct {
	CustomerID int64  `json:"customerId"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Link       string `json:"link"`
	UserFilter string `json:"userFilter"`
}

// SendNotification accepts either a JSON body or a multipart form with an
// optional "image" file field.
func (nc *NotificationController) SendNotification(c *gin.Context) {
	req, err := nc.parseSendRequest(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := nc.service.Send(c.Request.Context(), req)
	if err != nil {
		if services.IsValidation(err) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.ErrorLogger.Errorf("send notification failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to send notification"))
		return
	}

	utils.InfoLogger.Printf("notification sent to %d recipient(s)", result.Recipients)
	utils.RespondSuccess(c, http.StatusOK, "Notification sent")
}

func (nc *NotificationController) parseSendRequest(c *gin.Context) (services.SendRequest, error) {
	if c.ContentType() == "multipart/form-data" {
		req := services.SendRequest{
			Title:      c.PostForm("title"),
			Message:    c.PostForm("message"),
			Link:       c.PostForm("link"),
			UserFilter: c.PostForm("userFilter"),
		}
		if idStr := c.PostForm("customerId"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return services.SendRequest{}, errors.New("invalid customerId")
			}
			req.CustomerID = id
		}

		file, err := c.FormFile("image")
		if err == nil && file != nil {
			f, err := file.Open()
			if err != nil {
				return services.SendRequest{}, errors.New("unable to read image")
			}
			defer f.Close()
			content, err := io.ReadAll(f)
			if err != nil {
				return services.SendRequest{}, errors.New("unable to read image")
			}
			req.Image = content
			req.ImageName = file.Filename
			req.ImageMime = file.Header.Get("Content-Type")
		}
		return req, nil
	}

	var body sendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return services.SendRequest{}, errors.New("invalid request body")
	}
	return services.SendRequest{
		CustomerID: body.CustomerID,
		Title:      body.Title,
		Message:    body.Message,
		Link:       body.Link,
		UserFilter: body.UserFilter,
	}, nil
}

// GetAllNotifications returns the local feed, newest first.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": nc.service.ListAll(),
	})
}

// GetUnreadCount returns how many notifications are unread.
func (nc *NotificationController) GetUnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"unread":  nc.service.CountUnread(),
	})
}

// MarkAllRead marks the whole feed as read.
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	nc.service.MarkAllRead()
	utils.RespondSuccess(c, http.StatusOK, "All notifications marked as read")
}

// DeleteNotification removes one notification. Unknown IDs still return
// success.
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}
	nc.service.DeleteByID(id)
	utils.RespondSuccess(c, http.StatusOK, "Notification deleted")
}

// ClearNotifications empties the local feed.
func (nc *NotificationController) ClearNotifications(c *gin.Context) {
	nc.service.Clear()
	utils.RespondSuccess(c, http.StatusOK, "Notifications cleared")
}

// GetCustomerNotifications reads a customer's notification list from
// their Shopify metafield.
func (nc *NotificationController) GetCustomerNotifications(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid customer id"))
		return
	}

	list, err := nc.service.ListRemote(c.Request.Context(), customerID)
	if err != nil {
		utils.ErrorLogger.Errorf("list notifications for customer %d failed: %v", customerID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to load notifications"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": list,
	})
}

// ClearCustomerNotifications overwrites a customer's metafield with an
// empty list.
func (nc *NotificationController) ClearCustomerNotifications(c *gin.Context) {
	var body struct {
		CustomerID int64 `json:"customerId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.CustomerID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("customerId is required"))
		return
	}

	if err := nc.service.ClearRemote(c.Request.Context(), body.CustomerID); err != nil {
		utils.ErrorLogger.Errorf("clear notifications for customer %d failed: %v", body.CustomerID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to clear notifications"))
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Notifications cleared")
}
