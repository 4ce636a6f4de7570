package ui

import (
	"log"
	"net/http"

	"finsight/domain/finance"
	"finsight/internal/errors"
	"finsight/internal/pages"
	"finsight/internal/session"

	"github.com/gin-gonic/gin"
)

// NavItem is one entry of the sidebar
type NavItem struct {
	Name   string
	Title  string
	Active bool
}

// Preview is the head of the uploaded table shown after an upload
type Preview struct {
	ID        string
	Filename  string
	Rows      int
	Employees int
	Headers   []string
	Cells     [][]string
}

func navItems(active string) []NavItem {
	var items []NavItem
	for _, def := range pages.All() {
		items = append(items, NavItem{Name: def.Name, Title: def.Title, Active: def.Name == active})
	}
	return items
}

func preview(snap *session.Snapshot) *Preview {
	t := snap.Table
	p := &Preview{
		ID:        snap.ID,
		Filename:  snap.Filename,
		Rows:      t.Len(),
		Employees: len(t.Employees()),
		Headers:   t.Headers(),
	}
	for r := 0; r < t.Len() && r < previewRows; r++ {
		row := make([]string, len(p.Headers))
		for j, h := range p.Headers {
			row[j] = t.Cell(r, h)
		}
		p.Cells = append(p.Cells, row)
	}
	return p
}

func expectedColumns() []string {
	columns := []string{finance.ColEmployee, finance.ColIncome}
	columns = append(columns, finance.ExpenseColumns...)
	return append(columns, finance.ColSavings)
}

func (s *Server) indexData(errMsg string) gin.H {
	data := gin.H{
		"Nav":     navItems(""),
		"Error":   errMsg,
		"Columns": expectedColumns(),
	}
	if snap, err := s.store.Current(); err == nil {
		data["Dataset"] = preview(snap)
	}
	return data
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", s.indexData(""))
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", s.indexData("Choose a CSV file to upload."))
		return
	}
	file, err := header.Open()
	if err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", s.indexData("The uploaded file could not be opened."))
		return
	}
	defer file.Close()

	if _, err := s.loader.Load(c.Request.Context(), file, header.Filename); err != nil {
		log.Printf("[Upload] %s rejected: %v", header.Filename, err)
		s.renderTemplate(c, errors.HTTPStatus(err), "index.html", s.indexData(errors.GetMessage(err)))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handlePage(c *gin.Context) {
	name := c.Param("name")
	def, ok := pages.Lookup(name)
	if !ok {
		s.renderTemplate(c, http.StatusNotFound, "index.html", s.indexData("Unknown page "+name+"."))
		return
	}

	data := gin.H{"Nav": navItems(name), "Title": def.Title, "Name": def.Name}
	page, err := s.env.Render(c.Request.Context(), s.store, name, pages.Inputs(c.Request.URL.Query()))
	if err != nil {
		if !errors.HasCode(err, errors.CodeNoData) {
			s.renderTemplate(c, errors.HTTPStatus(err), "index.html", s.indexData(errors.GetMessage(err)))
			return
		}
		data["Notice"] = errors.GetMessage(err)
	} else {
		data["Page"] = page
	}
	s.renderTemplate(c, http.StatusOK, "page.html", data)
}

func (s *Server) handleDatasets(c *gin.Context) {
	data := gin.H{"Nav": navItems(""), "Enabled": s.loader.HistoryEnabled(), "CurrentID": ""}
	uploads, err := s.loader.History(c.Request.Context(), 50)
	if err != nil {
		data["Error"] = errors.GetMessage(err)
	}
	data["Uploads"] = uploads
	if snap, err := s.store.Current(); err == nil {
		data["CurrentID"] = snap.ID
	}
	s.renderTemplate(c, http.StatusOK, "datasets.html", data)
}

func (s *Server) handleActivate(c *gin.Context) {
	if _, err := s.loader.Activate(c.Request.Context(), c.Param("id")); err != nil {
		data := gin.H{"Nav": navItems(""), "Enabled": s.loader.HistoryEnabled(), "Error": errors.GetMessage(err)}
		s.renderTemplate(c, errors.HTTPStatus(err), "datasets.html", data)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
