package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MaximilianoIS/EconDecode/internal/services/insights"
	"github.com/MaximilianoIS/EconDecode/internal/services/stocks"
	"github.com/MaximilianoIS/EconDecode/internal/services/textgen"
)

type stubStocks struct {
	snap *stocks.Snapshot
	note string
	err  error

	gotTicker string
	calls     int
}

func (s *stubStocks) Snapshot(_ context.Context, ticker string) (*stocks.Snapshot, string, error) {
	s.calls++
	s.gotTicker = ticker
	return s.snap, s.note, s.err
}

// pngBytes carries a real PNG signature so content sniffing accepts it.
var pngBytes = []byte("\x89PNG\r\n\x1a\n00000000")

func multipartImage(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze_product_image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func profileReq(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/company_profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCompanyProfileUnavailable(t *testing.T) {
	h := NewInsightsHandler(nil, &stubStocks{})
	rec, body := doRequest(t, h.CompanyProfile, profileReq(`{"company_name":"Acme"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body["error"] != "AI features unavailable." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestCompanyProfileValidation(t *testing.T) {
	h := NewInsightsHandler(insights.NewService(&stubGenerator{}), &stubStocks{})

	rec, body := doRequest(t, h.CompanyProfile, profileReq(`not json`))
	if rec.Code != http.StatusBadRequest || body["error"] != "Company name needed." {
		t.Errorf("bad json: status = %d, error = %q", rec.Code, body["error"])
	}

	rec, body = doRequest(t, h.CompanyProfile, profileReq(`{"company_name":""}`))
	if rec.Code != http.StatusBadRequest || body["error"] != "Company name cannot be empty." {
		t.Errorf("empty name: status = %d, error = %q", rec.Code, body["error"])
	}
}

func TestCompanyProfileSuccess(t *testing.T) {
	gen := &stubGenerator{replies: map[string]*textgen.Result{
		"stock ticker symbol": {Text: "AAPL"},
		"website domain":      {Text: "apple.com"},
		"investment signal":   {Text: "Buy"},
	}}
	month := 2.5
	st := &stubStocks{snap: &stocks.Snapshot{Symbol: "AAPL", Price: 190.5, MonthChangePercent: &month}}
	h := NewInsightsHandler(insights.NewService(gen), st)

	rec := httptest.NewRecorder()
	h.CompanyProfile(rec, profileReq(`{"company_name":"Apple"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp companyProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.CompanyName != "Apple" || resp.TickerSymbol != "AAPL" {
		t.Errorf("company=%q ticker=%q", resp.CompanyName, resp.TickerSymbol)
	}
	if resp.LogoURL == nil || *resp.LogoURL != "https://logo.clearbit.com/apple.com" {
		t.Errorf("logo_url = %v", resp.LogoURL)
	}
	if resp.StockData == nil || resp.StockData.Symbol != "AAPL" {
		t.Errorf("stock_data = %+v", resp.StockData)
	}
	if resp.StockError != nil {
		t.Errorf("stock_error = %q", *resp.StockError)
	}
	if resp.ProfileDetails == nil || resp.ProfileDetails.Recommendation != "Buy" {
		t.Errorf("profile_details = %+v", resp.ProfileDetails)
	}
	if st.gotTicker != "AAPL" {
		t.Errorf("stock lookup ticker = %q", st.gotTicker)
	}
}

func TestCompanyProfileSkipsStocksForPrivateCompany(t *testing.T) {
	gen := &stubGenerator{replies: map[string]*textgen.Result{
		"stock ticker symbol": {Text: "PRIVATE"},
	}}
	st := &stubStocks{}
	h := NewInsightsHandler(insights.NewService(gen), st)

	rec := httptest.NewRecorder()
	h.CompanyProfile(rec, profileReq(`{"company_name":"Family Bakery"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if st.calls != 0 {
		t.Errorf("stock lookup should be skipped for PRIVATE, got %d calls", st.calls)
	}

	var resp companyProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TickerSymbol != "PRIVATE" || resp.StockData != nil || resp.StockError != nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCompanyProfileStockError(t *testing.T) {
	gen := &stubGenerator{replies: map[string]*textgen.Result{
		"stock ticker symbol": {Text: "AAPL"},
	}}
	st := &stubStocks{err: errors.New("Failed to retrieve essential stock data.")}
	h := NewInsightsHandler(insights.NewService(gen), st)

	rec := httptest.NewRecorder()
	h.CompanyProfile(rec, profileReq(`{"company_name":"Apple"}`))

	var resp companyProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.StockData != nil {
		t.Errorf("stock_data = %+v, want null", resp.StockData)
	}
	if resp.StockError == nil || *resp.StockError != "Failed to retrieve essential stock data." {
		t.Errorf("stock_error = %v", resp.StockError)
	}
}

func TestAnalyzeImageUnavailable(t *testing.T) {
	h := NewInsightsHandler(nil, &stubStocks{})
	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "product_image", "shoe.png", pngBytes))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body["error"] != "AI model for image analysis is not available." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageTextOnlyModel(t *testing.T) {
	h := NewInsightsHandler(insights.NewService(&stubGenerator{images: false}), &stubStocks{})
	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "product_image", "shoe.png", pngBytes))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(body["error"], "multimodal") {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageMissingFile(t *testing.T) {
	h := NewInsightsHandler(insights.NewService(&stubGenerator{images: true}), &stubStocks{})
	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "wrong_field", "shoe.png", pngBytes))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "No image file found in request." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageInvalidFormat(t *testing.T) {
	h := NewInsightsHandler(insights.NewService(&stubGenerator{images: true}), &stubStocks{})
	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "product_image", "notes.txt", []byte("just some text, not an image")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Invalid or unsupported image file format." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageBlocked(t *testing.T) {
	gen := &stubGenerator{images: true, replies: map[string]*textgen.Result{
		"Identify the primary product": {Blocked: true, BlockReason: "SAFETY"},
	}}
	h := NewInsightsHandler(insights.NewService(gen), &stubStocks{})

	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "product_image", "shoe.png", pngBytes))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Image analysis blocked by AI safety (SAFETY)." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageUnknownCompany(t *testing.T) {
	gen := &stubGenerator{images: true, replies: map[string]*textgen.Result{
		"Identify the primary product":       {Text: "Product: Mystery Gadget | Company: Unknown"},
		"Respond with ONLY the company name": {Text: "Unknown"},
	}}
	h := NewInsightsHandler(insights.NewService(gen), &stubStocks{})

	rec, body := doRequest(t, h.AnalyzeProductImage, multipartImage(t, "product_image", "gadget.png", pngBytes))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["identified_product"] != "Mystery Gadget" || body["identified_company"] != "Unknown" {
		t.Errorf("body = %v", body)
	}
	if !strings.Contains(body["error"], "parent company") {
		t.Errorf("error = %q", body["error"])
	}
}

func TestAnalyzeImageSuccess(t *testing.T) {
	gen := &stubGenerator{images: true, replies: map[string]*textgen.Result{
		"Identify the primary product": {Text: "Product: iPhone 15 Pro | Company: Apple"},
		"stock ticker symbol":          {Text: "AAPL"},
		"website domain":               {Text: "apple.com"},
		"investment signal":            {Text: "Wait"},
	}}
	st := &stubStocks{snap: &stocks.Snapshot{Symbol: "AAPL", Price: 190.5, ChangePercent: 1.2}}
	h := NewInsightsHandler(insights.NewService(gen), st)

	rec := httptest.NewRecorder()
	h.AnalyzeProductImage(rec, multipartImage(t, "product_image", "phone.png", pngBytes))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp imageAnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.IdentifiedProduct != "iPhone 15 Pro" || resp.IdentifiedCompany != "Apple" {
		t.Errorf("product=%q company=%q", resp.IdentifiedProduct, resp.IdentifiedCompany)
	}
	if resp.TickerSymbol != "AAPL" || resp.StockData == nil || resp.ProfileDetails == nil {
		t.Errorf("resp = %+v", resp)
	}

	// The business summary prompt should have carried the stock line.
	found := false
	for _, p := range gen.prompts {
		if strings.Contains(p, "Symbol: AAPL, Price: 190.5") {
			found = true
		}
	}
	if !found {
		t.Errorf("stock summary line never reached a prompt: %v", gen.prompts)
	}
}
