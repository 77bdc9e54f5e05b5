package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"hemapp/internal/domain/facility"
)

// Upload результат загрузки файла
type Upload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Upload загружает файл в bucket и возвращает его публичный адрес
func (c *Client) Upload(ctx context.Context, bucket, filename string, content io.Reader) (Upload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return Upload{}, fmt.Errorf("ошибка формирования запроса: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return Upload{}, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if err := w.Close(); err != nil {
		return Upload{}, fmt.Errorf("ошибка формирования запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/storage/v1/"+url.PathEscape(bucket), &buf)
	if err != nil {
		return Upload{}, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out Upload
	if err := c.send(req, &out); err != nil {
		return Upload{}, err
	}
	return out, nil
}

// NearbyQuery параметры поиска учреждений
type NearbyQuery struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	Kind     string
	Limit    int
}

// NearbyFacilities учреждения рядом с точкой, ближайшие первыми
func (c *Client) NearbyFacilities(ctx context.Context, q NearbyQuery) ([]facility.Facility, error) {
	v := url.Values{}
	v.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	if q.RadiusKm > 0 {
		v.Set("radius_km", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
	}
	if q.Kind != "" {
		v.Set("kind", q.Kind)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	var out []facility.Facility
	if err := c.do(ctx, http.MethodGet, "/api/facilities/nearby?"+v.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
