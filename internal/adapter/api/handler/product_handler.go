package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"abcstore/internal/domain/service"
	"abcstore/internal/usecase"
	"abcstore/pkg/errors"
	"abcstore/pkg/response"
	"abcstore/pkg/utils"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type bulkDeleteRequest struct {
	IDs     []string             `json:"ids"`
	Filters *usecase.BulkFilters `json:"filters"`
}

type downloadPDFRequest struct {
	ProductIDs []string `json:"productIds"`
}

type downloadAllRequest struct {
	Filters usecase.BulkFilters `json:"filters"`
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	params := utils.GetPaginationParams(c)
	opts := usecase.ListOptions{
		Search:    c.QueryParam("search"),
		Category:  c.QueryParam("category"),
		Status:    c.QueryParam("status"),
		CreatedBy: c.QueryParam("createdBy"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	items, total, err := h.productUseCase.ListProducts(c.Request().Context(), uid, role, opts)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, "products", items, params.Page, params.Limit, total)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"), uid, role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	input, err := parseProductForm(c)
	if err != nil {
		return response.Error(c, err)
	}

	images, err := collectImageInputs(c, nil)
	if err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), uid, role, input, images)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	input, err := parseProductForm(c)
	if err != nil {
		return response.Error(c, err)
	}

	existing, err := parseExistingImages(c)
	if err != nil {
		return response.Error(c, err)
	}

	images, err := collectImageInputs(c, existing)
	if err != nil {
		return response.Error(c, err)
	}

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), c.Param("id"), uid, role, input, images)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	if err := h.productUseCase.DeleteProduct(c.Request().Context(), c.Param("id"), uid, role); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Product deleted successfully",
	})
}

func (h *ProductHandler) BulkDelete(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	deleted, err := h.productUseCase.BulkDelete(c.Request().Context(), uid, role, req.IDs, req.Filters)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message":      fmt.Sprintf("%d products deleted successfully", deleted),
		"deletedCount": deleted,
	})
}

func (h *ProductHandler) DownloadPDF(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	var req downloadPDFRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	data, err := h.productUseCase.ExportPDF(c.Request().Context(), uid, role, req.ProductIDs)
	if err != nil {
		return response.Error(c, err)
	}

	return sendAttachment(c, data, "application/pdf", "pdf")
}

func (h *ProductHandler) DownloadAllPDF(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	var req downloadAllRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	data, err := h.productUseCase.ExportAllPDF(c.Request().Context(), uid, role, req.Filters)
	if err != nil {
		return response.Error(c, err)
	}

	return sendAttachment(c, data, "application/pdf", "pdf")
}

func (h *ProductHandler) DownloadCSV(c echo.Context) error {
	uid := c.Get("uid").(string)
	role := c.Get("role").(string)

	var req downloadAllRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	data, err := h.productUseCase.ExportCSV(c.Request().Context(), uid, role, req.Filters)
	if err != nil {
		return response.Error(c, err)
	}

	return sendAttachment(c, data, "text/csv", "csv")
}

func (h *ProductHandler) ListUploaders(c echo.Context) error {
	uploaders, err := h.productUseCase.ListUploaders(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"uploaders": uploaders,
		"total":     len(uploaders),
	})
}

func sendAttachment(c echo.Context, data []byte, contentType, ext string) error {
	filename := fmt.Sprintf("products-%d.%s", time.Now().Unix(), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, contentType, data)
}

// parseProductForm maps the multipart fields onto a patch. A field absent
// from the form leaves its pointer nil so updates only touch what the
// client sent.
func parseProductForm(c echo.Context) (usecase.ProductInput, error) {
	var input usecase.ProductInput

	form, err := c.MultipartForm()
	if err != nil {
		return input, errors.BadRequest("Invalid multipart form", err)
	}

	if v, ok := formValue(form, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(form, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(form, "price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return input, errors.ValidationField("price", "Price must be a number")
		}
		input.Price = &price
	}
	if v, ok := formValue(form, "originalPrice"); ok {
		// An unparseable original price means "no discount", matching how
		// empty form fields arrive from the admin UI.
		orig, err := strconv.ParseFloat(v, 64)
		if err != nil {
			orig = 0
		}
		input.OriginalPrice = &orig
	}
	if v, ok := formValue(form, "category"); ok {
		input.Category = &v
	}
	if v, ok := formValue(form, "sku"); ok {
		// Empty string clears the SKU.
		input.SKU = &v
	}
	if v, ok := formValue(form, "supplier"); ok {
		input.Supplier = &v
	}
	if v, ok := formValue(form, "stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return input, errors.ValidationField("stock", "Stock must be an integer")
		}
		input.Stock = &stock
	}
	if v, ok := formValue(form, "status"); ok {
		input.Status = &v
	}
	if v, ok := formValue(form, "rating"); ok {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return input, errors.ValidationField("rating", "Rating must be a number")
		}
		input.Rating = &rating
	}
	if v, ok := formValue(form, "reviewCount"); ok {
		count, err := strconv.Atoi(v)
		if err != nil {
			return input, errors.ValidationField("reviewCount", "Review count must be an integer")
		}
		input.ReviewCount = &count
	}
	if v, ok := formValue(form, "tags"); ok {
		var tags []string
		if v != "" {
			if err := json.Unmarshal([]byte(v), &tags); err != nil {
				return input, errors.ValidationField("tags", "Tags must be a JSON array of strings")
			}
		}
		input.Tags = tags
	}

	return input, nil
}

func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseExistingImages reads the existingImages field: a JSON array of
// either plain URL strings or {url, thumbnail} objects. Data URIs in
// either shape become fresh ingests.
func parseExistingImages(c echo.Context) ([]service.ImageInput, error) {
	raw := c.FormValue("existingImages")
	if raw == "" {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.ValidationField("existingImages", "existingImages must be a JSON array")
	}

	inputs := make([]service.ImageInput, 0, len(entries))
	for _, entry := range entries {
		var url, thumbnail string

		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			url = s
		} else {
			var obj struct {
				URL       string `json:"url"`
				Thumbnail string `json:"thumbnail"`
			}
			if err := json.Unmarshal(entry, &obj); err != nil {
				return nil, errors.ValidationField("existingImages", "existingImages entries must be URLs or objects")
			}
			url = obj.URL
			thumbnail = obj.Thumbnail
		}

		if url == "" {
			continue
		}
		if strings.HasPrefix(url, "data:") {
			inputs = append(inputs, service.ImageInput{
				Kind: service.ImageFromDataURI,
				URI:  url,
			})
			continue
		}
		inputs = append(inputs, service.ImageInput{
			Kind:      service.ImageFromURL,
			URI:       url,
			Thumbnail: thumbnail,
		})
	}
	return inputs, nil
}

// collectImageInputs appends freshly uploaded files after any retained
// images, preserving order so primary selection stays deterministic.
func collectImageInputs(c echo.Context, existing []service.ImageInput) ([]service.ImageInput, error) {
	inputs := existing

	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.BadRequest("Invalid multipart form", err)
	}

	for _, fileHeader := range form.File["images"] {
		data, err := readUpload(fileHeader)
		if err != nil {
			return nil, errors.BadRequest("Failed to read uploaded file", err)
		}
		inputs = append(inputs, service.ImageInput{
			Kind:        service.ImageFromFile,
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return inputs, nil
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
