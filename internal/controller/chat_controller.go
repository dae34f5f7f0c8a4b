package controller

import (
	"io"
	"strconv"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetOrCreateRoom(ctx *fiber.Ctx) error
	ListRooms(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	RoomUnreadCount(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
	TotalUnreadCount(ctx *fiber.Ctx) error
	ListStaff(ctx *fiber.Ctx) error
}

type chatController struct {
	roomService    service.IChatRoomService
	messageService service.IChatMessageService
	userService    service.IUserService
}

func NewChatController(
	roomService service.IChatRoomService,
	messageService service.IChatMessageService,
	userService service.IUserService,
) IChatController {
	return &chatController{
		roomService:    roomService,
		messageService: messageService,
		userService:    userService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("rooms", c.GetOrCreateRoom)
	h.Get("rooms", c.ListRooms)
	h.Get("rooms/:id/messages", c.ListMessages)
	h.Get("rooms/:id/unread-count", c.RoomUnreadCount)
	h.Post("messages", c.SendMessage)
	h.Post("messages/mark-read", c.MarkRead)
	h.Delete("messages/:id", c.DeleteMessage)
	h.Get("unread-count/rooms", c.TotalUnreadCount)
	h.Get("staff", c.ListStaff)
}

func callerID(ctx *fiber.Ctx) uuid.UUID {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func pageParam(ctx *fiber.Ctx) int {
	page, err := strconv.Atoi(ctx.Query("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (c *chatController) GetOrCreateRoom(ctx *fiber.Ctx) error {
	var req dto.GetOrCreateRoomRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, created, err := c.roomService.GetOrCreate(ctx.Context(), callerID(ctx), req.OtherUserId)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success get or create room", res))
}

func (c *chatController) ListRooms(ctx *fiber.Ctx) error {
	res, err := c.roomService.List(ctx.Context(), callerID(ctx), pageParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list rooms", res))
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	roomID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return serverutils.NewNotFoundError("room not found")
	}

	res, err := c.messageService.ListForRoom(ctx.Context(), callerID(ctx), roomID, pageParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *chatController) RoomUnreadCount(ctx *fiber.Ctx) error {
	roomID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return serverutils.NewNotFoundError("room not found")
	}

	res, err := c.roomService.UnreadCount(ctx.Context(), callerID(ctx), roomID)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get unread count", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	var attachment *service.AttachmentUpload
	if file, err := ctx.FormFile("attachment"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return err
		}
		attachment = &service.AttachmentUpload{Filename: file.Filename, Data: data}
	}

	res, err := c.messageService.Send(ctx.Context(), callerID(ctx), &req, attachment)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) MarkRead(ctx *fiber.Ctx) error {
	var req dto.MarkReadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.messageService.MarkAllRead(ctx.Context(), callerID(ctx), req.RoomId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark messages read", fiber.Map{"room_id": req.RoomId}))
}

func (c *chatController) DeleteMessage(ctx *fiber.Ctx) error {
	messageID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return serverutils.NewNotFoundError("message not found")
	}

	if err := c.messageService.Delete(ctx.Context(), callerID(ctx), messageID); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete message", fiber.Map{"id": messageID}))
}

func (c *chatController) TotalUnreadCount(ctx *fiber.Ctx) error {
	res, err := c.roomService.TotalUnread(ctx.Context(), callerID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get total unread count", res))
}

func (c *chatController) ListStaff(ctx *fiber.Ctx) error {
	res, err := c.userService.ListStaff(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list staff", res))
}
