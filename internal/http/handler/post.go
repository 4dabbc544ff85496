package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/service"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"
)

const postImageField = "image"

// ListPosts godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {array} model.Post
// @Failure 500 {object} errorPayload
// @Router /api/posts [get]
func ListPosts(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		posts, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(posts)
	}
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/posts/{id} [get]
func GetPost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(post)
	}
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param image formData file true "Image"
// @Success 201 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /api/posts [post]
func CreatePost(svc service.PostService, l upload.Limits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		image, err := singleFile(c, l)
		if err != nil {
			return err
		}
		post, err := svc.Create(c.UserContext(), postInput(c), image)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// UpdatePost godoc
// @Summary Update a post
// @Description Replaces title and content; an attached image replaces the stored one.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param id path string true "Post ID"
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param image formData file false "Image"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/posts/{id} [put]
func UpdatePost(svc service.PostService, l upload.Limits) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := validation.ValidateID(c.Params("id")); err != nil {
			return err
		}
		image, err := singleFile(c, l)
		if err != nil {
			return err
		}
		post, err := svc.Update(c.UserContext(), c.Params("id"), postInput(c), image)
		if err != nil {
			return err
		}
		return c.JSON(post)
	}
}

// DeletePost godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/posts/{id} [delete]
func DeletePost(svc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		post, err := svc.Delete(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(post)
	}
}

func postInput(c *fiber.Ctx) service.PostInput {
	return service.PostInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
	}
}

func singleFile(c *fiber.Ctx, l upload.Limits) (*upload.File, error) {
	l.MaxFiles = 1
	files, err := formFiles(c, postImageField, l)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}
