package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wisetv/wisetv/uploader"
	"github.com/wisetv/wisetv/utils"
)

// UploadController relays admin image uploads to the configured Cloudinary
// account and returns the hosted URL.
type UploadController struct {
	uploader *uploader.Uploader
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(u *uploader.Uploader) *UploadController {
	return &UploadController{uploader: u}
}

// Upload accepts a multipart image and forwards it to Cloudinary.
func (u *UploadController) Upload(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		file, header, err = ctx.Request.FormFile("f")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
			return
		}
	}
	defer file.Close()

	upload := uploader.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}

	url, err := u.uploader.Upload(ctx.Request.Context(), upload)
	if err != nil {
		if errors.Is(err, uploader.ErrValidation) {
			utils.Error(ctx, http.StatusBadRequest, 40031, err.Error())
			return
		}
		utils.Error(ctx, http.StatusBadGateway, 50230, "image upload failed")
		return
	}

	utils.Success(ctx, gin.H{"url": url})
}
