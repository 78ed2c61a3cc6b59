package server

import (
	"folio/internal/middleware"
	"folio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Filter by author (username), title or tag; search title and content; newest first by default
// @Tags posts
// @Produce json
// @Param author query string false "Author username"
// @Param tag query string false "Tag name, case insensitive"
// @Param search query string false "Search terms"
// @Param ordering query string false "published_date or title, prefix - for descending"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.postService.ListPosts(c.UserContext(), middleware.ActorFrom(c), params)
	return respondList(c, seq, err)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), middleware.ActorFrom(c), id)
	return respondOK(c, post, err)
}

// CreatePost handles POST /api/posts. tags may be a comma separated string
// or a list.
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,tags=string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.CreatePost(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, post, err)
}

// UpdatePost handles PUT and PATCH /api/posts/:id. Only the author may
// change a post.
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{title=string,content=string,tags=string} true "Changed fields"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.UpdatePost(c.UserContext(), middleware.ActorFrom(c), id, req)
	return respondOK(c, post, err)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post and its comments
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.postService.DeletePost(c.UserContext(), middleware.ActorFrom(c), id))
}

// ListComments handles GET /api/posts/:id/comments
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	params, err := listParams(c)
	if err != nil {
		return nil
	}
	seq, err := s.commentService.ListComments(c.UserContext(), middleware.ActorFrom(c), postID, params)
	return respondList(c, seq, err)
}

// GetComment handles GET /api/posts/:id/comments/:commentId
func (s *Server) GetComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), middleware.ActorFrom(c), postID, commentID)
	return respondOK(c, comment, err)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.Comment
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CreateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.PostID = postID
	comment, err := s.commentService.CreateComment(c.UserContext(), middleware.ActorFrom(c), req)
	return respondCreated(c, comment, err)
}

// UpdateComment handles PUT and PATCH /api/posts/:id/comments/:commentId
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Param request body object{content=string} true "Comment"
// @Success 200 {object} models.Comment
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req service.UpdateCommentInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.UpdateComment(c.UserContext(), middleware.ActorFrom(c), postID, commentID, req)
	return respondOK(c, comment, err)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete a comment
// @Tags comments
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Security BearerAuth
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	return respondDeleted(c, s.commentService.DeleteComment(c.UserContext(), middleware.ActorFrom(c), postID, commentID))
}
