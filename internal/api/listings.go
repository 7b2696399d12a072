package api

import (
	"net/http"
	"strconv"
	"strings"

	"pazaryeri/internal/models"
	"pazaryeri/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const imageBucketPath = "/storage/v1/object/public/product-images/"

// ListingView is a listing with resolved image URLs.
type ListingView struct {
	models.Listing
	ImageURLs    []string `json:"image_urls"`
	PrimaryImage *string  `json:"primary_image"`
}

func (h *APIHandler) GetListings(c *gin.Context) {
	filter, err := h.listingFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	listings, err := h.deps.Listings.GetFiltered(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, zap.String("action", "get_listings"))
		return
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, h.viewListing(l))
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"listings": views,
		"count":    len(views),
	})
}

func (h *APIHandler) GetListing(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	listing, err := h.deps.Listings.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, zap.String("action", "get_listing"), zap.String("listing_id", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "listing": h.viewListing(*listing)})
}

func (h *APIHandler) listingFilter(c *gin.Context) (repository.ListingFilter, error) {
	f := repository.ListingFilter{
		Categories:  splitValues(append(c.QueryArray("category"), c.QueryArray("categories")...)),
		Conditions:  splitValues(append(c.QueryArray("condition"), c.QueryArray("conditions")...)),
		Location:    c.Query("location"),
		Search:      c.Query("search"),
		PremiumOnly: c.Query("premium") == "true",
		Since:       repository.SinceFor(c.Query("date_range"), h.now()),
	}

	var err error
	if f.MinPrice, err = optionalFloat(c.Query("min_price")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat(c.Query("max_price")); err != nil {
		return f, err
	}
	if s := c.Query("limit"); s != "" {
		if f.Limit, err = strconv.Atoi(s); err != nil {
			return f, errBadRequest
		}
	}
	return f, nil
}

func (h *APIHandler) viewListing(l models.Listing) ListingView {
	v := ListingView{Listing: l, ImageURLs: []string{}}
	if len(l.Images) > 0 {
		base := strings.TrimRight(h.deps.StoragePublicURL, "/")
		for _, path := range l.Images {
			v.ImageURLs = append(v.ImageURLs, base+imageBucketPath+path)
		}
	} else if l.ImageURL != nil && *l.ImageURL != "" {
		v.ImageURLs = []string{*l.ImageURL}
	}

	if len(v.ImageURLs) > 0 {
		v.PrimaryImage = &v.ImageURLs[0]
	} else {
		v.PrimaryImage = l.ImageURL
	}
	return v
}

// splitValues accepts both repeated and comma separated query values.
func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errBadRequest
	}
	return &v, nil
}
