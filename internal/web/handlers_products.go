package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/storefront/internal/core"
	"github.com/JonMunkholm/storefront/internal/sheet"
)

// readUpload decodes the spreadsheet uploaded as the multipart field
// "file". It writes the error response itself and reports false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]core.Record, string, bool) {
	maxSize := int64(s.cfg.Import.MaxFileSize)
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, r, sheet.ErrFileTooLarge)
			return nil, "", false
		}
		s.respondError(w, r, core.InvalidInput("import", "invalid multipart form: %v", err))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, core.InvalidInput("import", "no file provided"))
		return nil, "", false
	}
	defer file.Close()

	sheetName := r.FormValue("sheet")
	if sheetName == "" {
		sheetName = s.cfg.Import.Sheet
	}

	rows, err := sheet.Read(file, header.Filename, sheet.Options{Sheet: sheetName, MaxSize: maxSize})
	if err != nil {
		if !errors.Is(err, sheet.ErrUnsupportedFile) && !errors.Is(err, sheet.ErrFileTooLarge) {
			// Anything else is a file we could not decode.
			err = core.InvalidInput("import", "%v", err)
		}
		s.respondError(w, r, err)
		return nil, "", false
	}
	return rows, header.Filename, true
}

// handleImportProducts imports a product spreadsheet uploaded as the
// multipart field "file". Optional form values: policy, sheet, key_column.
//
// The import runs synchronously. Per-product failures come back in the
// report with status 200; only a run that cannot start is an error.
func (s *Server) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	rows, fileName, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	// An empty policy leaves the configured default in place.
	var policy core.Policy
	if raw := r.FormValue("policy"); raw != "" {
		var err error
		if policy, err = core.ParsePolicy(raw); err != nil {
			s.respondError(w, r, core.InvalidInput("import", "%v", err))
			return
		}
	}

	report, err := s.service.ImportRows(r.Context(), rows, core.ImportOptions{
		FileName:  fileName,
		Policy:    policy,
		KeyColumn: r.FormValue("key_column"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handlePreviewImport reports what importing the uploaded file would do.
func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	preview, err := s.service.PreviewImport(r.Context(), rows, r.FormValue("key_column"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleDownloadTemplate serves an empty import workbook.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products_template.xlsx"`)
	if err := sheet.WriteTemplate(w); err != nil {
		s.respondError(w, r, err)
	}
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListImportRuns(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": runs, "count": len(runs)})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req core.ProductRequest
	if err := decodeJSON(w, r, "product", &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	detail, err := s.service.CreateProduct(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.service.ListProducts(r.Context(), queryInt(r, "limit", 100), queryInt(r, "offset", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "count": len(products)})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	detail, err := s.service.GetProduct(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var upd core.ProductUpdate
	if err := decodeJSON(w, r, "product", &upd); err != nil {
		s.respondError(w, r, err)
		return
	}

	product, err := s.service.UpdateProduct(r.Context(), id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteProduct(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
