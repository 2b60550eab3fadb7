package server

import (
	"forumhub/internal/repository"
	"forumhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var in service.CreatePostInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := s.postService.Create(ctx, currentUser(c), in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts?page=&sort=newest|popularity
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page number, from 1"
// @Param sort query string false "newest or popularity"
// @Success 200 {object} models.Page[models.Post]
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	page, err := s.postService.List(ctx, c.QueryInt("page", 1), c.Query("sort"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := s.postService.Get(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// SearchPosts handles GET /api/posts/search?tag=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	posts, err := s.postService.SearchByTag(ctx, c.Query("tag"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// highlights serves one of the fixed-size post views.
func (s *Server) highlights(view repository.PostView) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := withTimeout(c)
		defer cancel()

		posts, err := s.postService.Highlights(ctx, view)
		if err != nil {
			return s.respondError(c, err)
		}
		return c.JSON(posts)
	}
}

// VotePost handles PATCH /api/posts/:id/vote
// @Summary Vote on a post
// @Description Applies signed upVote/downVote deltas, or a legacy voteType of upvote/downvote.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.VoteInput true "Vote"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/vote [patch]
func (s *Server) VotePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.VoteInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := s.postService.Vote(ctx, id, in)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// SetPostFeatured handles PATCH /api/posts/:id/featured
func (s *Server) SetPostFeatured(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Featured bool `json:"featured"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	post, err := s.postService.SetFeatured(ctx, id, req.Featured)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// AddLegacyComment handles POST /api/posts/:id/comments with body {comment}.
func (s *Server) AddLegacyComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.postService.AddLegacyComment(ctx, id, req.Comment); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Comment added"})
}

// GetLegacyComments handles GET /api/posts/:id/comments
func (s *Server) GetLegacyComments(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comments, err := s.postService.LegacyComments(ctx, id)
	if err != nil {
		return s.respondError(c, err)
	}
	if comments == nil {
		comments = []string{}
	}
	return c.JSON(comments)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := s.postService.Delete(ctx, currentUser(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetPostsByAuthor handles GET /api/posts/user/:email?page=
func (s *Server) GetPostsByAuthor(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	page, err := s.postService.ListByAuthor(ctx, emailParam(c), c.QueryInt("page", 1))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// CountPostsByAuthor handles GET /api/posts/count/:email
func (s *Server) CountPostsByAuthor(c *fiber.Ctx) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := s.postService.CountByAuthor(ctx, emailParam(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}
