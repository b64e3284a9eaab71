package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	"reelhub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is room for the text fields next to the image.
const multipartOverhead = 64 << 10

type CatalogHandler struct {
	protectedHandler
	catalog       ports.CatalogService
	maxImageBytes int64
	imagePrefix   string
}

func NewCatalogHandler(catalog ports.CatalogService, gateway *services.Gateway, maxImageBytes int64, imagePrefix string) *CatalogHandler {
	return &CatalogHandler{
		protectedHandler: protectedHandler{gateway: gateway},
		catalog:          catalog,
		maxImageBytes:    maxImageBytes,
		imagePrefix:      strings.TrimSuffix(imagePrefix, "/"),
	}
}

func (h *CatalogHandler) SetupRoutes(router gin.IRouter) {
	router.GET("/shows", h.ListShows)
	router.POST("/shows", h.CreateShow)
	router.GET("/shows/:id", h.GetShow)
	router.PUT("/shows/:id", h.UpdateShow)
	router.GET("/shows/:id/episodes", h.ListEpisodes)
	router.POST("/shows/:id/episodes", h.CreateEpisode)
	router.PUT("/shows/:id/episodes/:eid", h.UpdateEpisode)
	router.POST("/shows/:id/favorite", h.ToggleFavorite)
	router.GET("/publisher/shows", h.ListOwnShows)
	router.GET("/me/favorites", h.ListFavorites)
}

type ShowResponse struct {
	*domain.Show
	ImageURL string `json:"image_url"`
}

type EpisodeResponse struct {
	*domain.Episode
	ImageURL string `json:"image_url"`
}

type UpdateEpisodeRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EpisodeLink *string `json:"episode_link"`
}

type UpdateShowRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	MovieLink   *string `json:"movie_link"`
}

func (h *CatalogHandler) imageURL(ref string) string {
	return h.imagePrefix + "/" + ref
}

func (h *CatalogHandler) showResponse(show *domain.Show) ShowResponse {
	return ShowResponse{Show: show, ImageURL: h.imageURL(show.ImageRef)}
}

func (h *CatalogHandler) showList(shows []*domain.Show) []ShowResponse {
	out := make([]ShowResponse, 0, len(shows))
	for _, s := range shows {
		out = append(out, h.showResponse(s))
	}
	return out
}

func (h *CatalogHandler) ListShows(c *gin.Context) {
	h.listShows(c, domain.ScopeKind(""))
}

// ListOwnShows is the publisher dashboard listing; other roles are refused.
func (h *CatalogHandler) ListOwnShows(c *gin.Context) {
	h.listShows(c, domain.ScopeOwnedBy)
}

func (h *CatalogHandler) listShows(c *gin.Context, requireScope domain.ScopeKind) {
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceShow, Verb: domain.VerbList},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			if requireScope != "" && scope.Kind != requireScope {
				return nil, services.ErrScopeMismatch
			}
			return h.catalog.ListShows(ctx, scope)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"shows": h.showList(result.([]*domain.Show))})
}

func (h *CatalogHandler) GetShow(c *gin.Context) {
	showID := pathID(c, "id")
	result, ok := h.handle(c, services.GatewayRequest{
		Action:        domain.Action{Resource: domain.ResourceShow, Verb: domain.VerbRead},
		ResolveTarget: showTarget(h.catalog, showID),
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.GetShow(ctx, scope, showID)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"show": h.showResponse(result.(*domain.Show))})
}

func (h *CatalogHandler) CreateShow(c *gin.Context) {
	sub := &domain.ShowSubmission{}
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceShow, Verb: domain.VerbCreate},
		ReadPayload: func(context.Context) error {
			if form := h.readMultipart(c); form != nil {
				sub.Title = form.value("title")
				sub.Description = form.value("description")
				sub.Genre = form.value("genre")
				sub.Category = domain.Category(form.value("category"))
				sub.MovieLink = form.value("movie_link")
				sub.Image = form.image
			}
			return nil
		},
		Submission: sub,
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.CreateShow(ctx, scope, sub)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"show": h.showResponse(result.(*domain.Show))})
}

// UpdateShow changes text fields only. The owner is not part of the request.
func (h *CatalogHandler) UpdateShow(c *gin.Context) {
	showID := pathID(c, "id")
	var req UpdateShowRequest
	bindErr := deferredBindError(c.ShouldBindJSON(&req))

	result, ok := h.handle(c, services.GatewayRequest{
		Action:        domain.Action{Resource: domain.ResourceShow, Verb: domain.VerbUpdate},
		ResolveTarget: showTarget(h.catalog, showID),
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			if bindErr != nil {
				return nil, bindErr
			}
			return h.catalog.UpdateShow(ctx, scope, showID, domain.ShowUpdate{
				Title:       req.Title,
				Description: req.Description,
				Genre:       req.Genre,
				MovieLink:   req.MovieLink,
			})
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"show": h.showResponse(result.(*domain.Show))})
}

func (h *CatalogHandler) ListEpisodes(c *gin.Context) {
	showID := pathID(c, "id")
	result, ok := h.handle(c, services.GatewayRequest{
		Action:        domain.Action{Resource: domain.ResourceEpisode, Verb: domain.VerbList},
		TargetKind:    domain.ResourceShow,
		ResolveTarget: showTarget(h.catalog, showID),
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.ListEpisodes(ctx, scope, showID)
		},
	})
	if !ok {
		return
	}

	episodes := result.([]*domain.Episode)
	out := make([]EpisodeResponse, 0, len(episodes))
	for _, e := range episodes {
		out = append(out, EpisodeResponse{Episode: e, ImageURL: h.imageURL(e.ImageRef)})
	}
	c.JSON(http.StatusOK, gin.H{"episodes": out})
}

func (h *CatalogHandler) CreateEpisode(c *gin.Context) {
	showID := pathID(c, "id")
	sub := &domain.EpisodeSubmission{ShowID: showID}
	result, ok := h.handle(c, services.GatewayRequest{
		Action:        domain.Action{Resource: domain.ResourceEpisode, Verb: domain.VerbCreate},
		TargetKind:    domain.ResourceShow,
		ResolveTarget: showTarget(h.catalog, showID),
		ReadPayload: func(context.Context) error {
			if form := h.readMultipart(c); form != nil {
				sub.Title = form.value("title")
				sub.Description = form.value("description")
				sub.EpisodeLink = form.value("episode_link")
				sub.Image = form.image
			}
			return nil
		},
		Submission: sub,
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.CreateEpisode(ctx, scope, sub)
		},
	})
	if !ok {
		return
	}

	episode := result.(*domain.Episode)
	c.JSON(http.StatusCreated, gin.H{"episode": EpisodeResponse{Episode: episode, ImageURL: h.imageURL(episode.ImageRef)}})
}

// UpdateEpisode is authorized against the owner of the parent show.
func (h *CatalogHandler) UpdateEpisode(c *gin.Context) {
	showID := pathID(c, "id")
	episodeID := pathID(c, "eid")
	var req UpdateEpisodeRequest
	bindErr := deferredBindError(c.ShouldBindJSON(&req))

	result, ok := h.handle(c, services.GatewayRequest{
		Action:        domain.Action{Resource: domain.ResourceEpisode, Verb: domain.VerbUpdate},
		TargetKind:    domain.ResourceShow,
		ResolveTarget: showTarget(h.catalog, showID),
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			if bindErr != nil {
				return nil, bindErr
			}
			return h.catalog.UpdateEpisode(ctx, scope, showID, episodeID, domain.EpisodeUpdate{
				Title:       req.Title,
				Description: req.Description,
				EpisodeLink: req.EpisodeLink,
			})
		},
	})
	if !ok {
		return
	}

	episode := result.(*domain.Episode)
	c.JSON(http.StatusOK, gin.H{"episode": EpisodeResponse{Episode: episode, ImageURL: h.imageURL(episode.ImageRef)}})
}

func (h *CatalogHandler) ToggleFavorite(c *gin.Context) {
	showID := pathID(c, "id")
	result, ok := h.handle(c, services.GatewayRequest{
		Action:     domain.Action{Resource: domain.ResourceFavorite, Verb: domain.VerbToggle},
		TargetKind: domain.ResourceShow,
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.ToggleFavorite(ctx, scope, showID)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) ListFavorites(c *gin.Context) {
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceFavorite, Verb: domain.VerbList},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.catalog.ListFavorites(ctx, scope)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": result})
}

type multipartForm struct {
	values map[string][]string
	image  *domain.MediaUpload
}

func (f *multipartForm) value(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return utils.SanitizeString(v[0])
	}
	return ""
}

// readMultipart parses an upload form once the gateway has admitted the caller.
// It returns nil for a body that is not a usable form, leaving the submission
// empty so validation reports it.
func (h *CatalogHandler) readMultipart(c *gin.Context) *multipartForm {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(h.maxImageBytes + multipartOverhead); err != nil {
		return nil
	}

	form := &multipartForm{values: c.Request.MultipartForm.Value}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		return form
	}
	defer file.Close()

	// One byte past the limit is enough for validation to reject it.
	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return form
	}
	form.image = &domain.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return form
}
