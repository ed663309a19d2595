package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepdiary/internal/service"
)

func ListDiaries(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		if !ok {
			HandleError(c, app.Logger(), service.ErrUserNotFound)
			return
		}

		diaries, err := app.Diaries().List(c.Request.Context(), userID)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, diaries)
	}
}

func PostDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		if !ok {
			HandleError(c, app.Logger(), service.ErrUserNotFound)
			return
		}

		body, err := jsonBody(c)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}

		diary, err := app.Diaries().Create(c.Request.Context(), userID, body)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusCreated, diary)
	}
}

func PutDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		diaryID, ok2 := pathID(c, "diaryId")
		if !ok || !ok2 {
			HandleError(c, app.Logger(), service.ErrDiaryNotFound)
			return
		}

		body, err := jsonBody(c)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}

		diary, err := app.Diaries().Update(c.Request.Context(), userID, diaryID, body)
		if err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, diary)
	}
}

func DeleteDiary(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		diaryID, ok2 := pathID(c, "diaryId")
		if !ok || !ok2 {
			HandleError(c, app.Logger(), service.ErrDiaryNotFound)
			return
		}

		if err := app.Diaries().Delete(c.Request.Context(), userID, diaryID); err != nil {
			HandleError(c, app.Logger(), err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusNoContent, nil)
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// noPayload stands in for the body of a request that carries no JSON.
var noPayload = []byte("null")

// jsonBody returns the raw body of a JSON request. Bodies sent with another
// content type are read as a JSON null, which fails as an invalid input type.
func jsonBody(c *gin.Context) ([]byte, error) {
	if !isJSON(c.ContentType()) {
		return noPayload, nil
	}
	return c.GetRawData()
}

func isJSON(contentType string) bool {
	if contentType == "application/json" {
		return true
	}
	return strings.HasPrefix(contentType, "application/") && strings.HasSuffix(contentType, "+json")
}
