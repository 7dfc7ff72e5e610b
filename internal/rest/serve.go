// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/ppmbench/internal"
	"github.com/mlnoga/ppmbench/internal/gray"
	"github.com/mlnoga/ppmbench/internal/median"
	"github.com/mlnoga/ppmbench/internal/ops"
	"github.com/mlnoga/ppmbench/internal/ppm"
	"github.com/mlnoga/ppmbench/internal/stats"
)

// MIME type of PPM request and response bodies
const ContentTypePPM = "image/x-portable-pixmap"

// Default median window size if the request does not set one
const defaultWindowSize = 5

// Serves the REST API on the given address until the listener fails
func Serve(addr string, c *ops.Context) error {
	internal.LogPrintf("Serving REST API on %s with up to %d threads per request\n", addr, c.MaxThreads)
	return NewRouter(c).Run(addr)
}

// Creates the router for the REST API. Operators log to the context's log writer
func NewRouter(c *ops.Context) *gin.Engine {
	h := &handlers{ctx: c}
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/median", h.postMedian)
			v1.POST("/gray", h.postGray)
			v1.POST("/stats", h.postStats)
			v1.POST("/sequence", h.postSequence)
		}
	}
	return r
}

type handlers struct {
	ctx *ops.Context
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Maps an error to an HTTP status: bad input is the client's fault, everything else ours
func errorStatus(err error) int {
	if errors.Is(err, ppm.ErrIO) || errors.Is(err, ppm.ErrConfiguration) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errorStatus(err), gin.H{"error": err.Error()})
}

// Reads an integer query parameter, falling back to the given default if absent
func queryInt(c *gin.Context, key string, def int) (int, error) {
	s, ok := c.GetQuery(key)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s '%s'", ppm.ErrConfiguration, key, s)
	}
	return v, nil
}

// Returns the threads query parameter, defaulting to and capped at the context limit
func (h *handlers) threads(c *gin.Context) (int, error) {
	threads, err := queryInt(c, "threads", h.ctx.MaxThreads)
	if err != nil {
		return 0, err
	}
	if threads > h.ctx.MaxThreads {
		threads = h.ctx.MaxThreads
	}
	return threads, nil
}

func writeImage(c *gin.Context, img *ppm.Image) {
	var buf bytes.Buffer
	if err := img.Write(&buf); err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, ContentTypePPM, buf.Bytes())
}

func (h *handlers) postMedian(c *gin.Context) {
	window, err := queryInt(c, "window", defaultWindowSize)
	if err != nil {
		abortWithError(c, err)
		return
	}
	threads, err := h.threads(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	strategy, err := median.ParseStrategy(c.Query("strategy"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	in, err := ppm.Read(c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out, err := median.FilterWith(in, window, threads, strategy)
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeImage(c, out)
}

func (h *handlers) postGray(c *gin.Context) {
	threads, err := h.threads(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	in, err := ppm.Read(c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	out, err := gray.Convert(in, threads)
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeImage(c, out)
}

func (h *handlers) postStats(c *gin.Context) {
	in, err := ppm.Read(c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s, err := stats.ChannelStats(in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	res := gin.H{"width": in.Width, "height": in.Height}
	for i, cs := range s {
		res[stats.ChannelNames[i]] = cs
	}
	c.JSON(http.StatusOK, res)
}

type postSequenceArgs struct {
	Image    []byte          `json:"image"` // base64 encoded PPM
	Sequence *ops.OpSequence `json:"sequence"`
}

func (h *handlers) postSequence(c *gin.Context) {
	var args postSequenceArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", ppm.ErrConfiguration, err.Error()))
		return
	}
	if args.Sequence == nil {
		abortWithError(c, fmt.Errorf("%w: missing sequence", ppm.ErrConfiguration))
		return
	}
	in, err := ppm.Read(bytes.NewReader(args.Image))
	if err != nil {
		abortWithError(c, err)
		return
	}

	promises, err := args.Sequence.MakePromises([]ops.Promise{ops.PromiseOf(in)}, h.ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(promises) != 1 {
		abortWithError(c, fmt.Errorf("%w: sequence produced %d images, want 1", ppm.ErrConfiguration, len(promises)))
		return
	}
	out, err := promises[0]()
	if err != nil {
		abortWithError(c, err)
		return
	}
	writeImage(c, out)
}
