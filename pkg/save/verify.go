package save

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/agentstation/fcupdater/internal/proc"
	"github.com/agentstation/fcupdater/pkg/errors"
)

const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"

	relOfficeDocument = "/officeDocument"
	relStyles         = "/styles"
	relWorksheet      = "/worksheet"
	relSharedStrings  = "/sharedStrings"

	sharedStringsPart = "sharedStrings.xml"
)

type relationships struct {
	Items []struct {
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

// Verify reopens the xlsx package at p and checks that the content types,
// the package and workbook relationships, the workbook, its styles and
// every part the workbook references are present and well-formed XML.
// The shared strings part is required as soon as any worksheet has a
// shared-string cell.
func Verify(p string) error {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return errors.NewIntegrityError(p, "", "not a zip package", err)
	}
	defer func() { _ = zr.Close() }()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	var sharedRefs bool
	check := func(name string) error {
		f, ok := parts[name]
		if !ok {
			return errors.NewIntegrityError(p, name, "part missing", nil)
		}
		refs, err := wellFormed(f)
		if err != nil {
			return errors.NewIntegrityError(p, name, "malformed XML", err)
		}
		sharedRefs = sharedRefs || refs
		return nil
	}

	if err := check(contentTypesPart); err != nil {
		return err
	}
	pkgRels, err := readRels(parts, p, packageRelsPart)
	if err != nil {
		return err
	}

	workbook := ""
	for _, r := range pkgRels.Items {
		if strings.HasSuffix(r.Type, relOfficeDocument) {
			workbook = strings.TrimPrefix(r.Target, "/")
		}
	}
	if workbook == "" {
		return errors.NewIntegrityError(p, packageRelsPart, "no workbook relationship", nil)
	}
	if err := check(workbook); err != nil {
		return err
	}

	dir, file := path.Split(workbook)
	wbRelsPart := dir + "_rels/" + file + ".rels"
	wbRels, err := readRels(parts, p, wbRelsPart)
	if err != nil {
		return err
	}

	var styles, sheets, sharedStrings bool
	for _, r := range wbRels.Items {
		if strings.EqualFold(r.TargetMode, "External") {
			continue
		}
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join(dir, target)
		}
		switch {
		case strings.HasSuffix(r.Type, relStyles):
			styles = true
		case strings.HasSuffix(r.Type, relWorksheet):
			sheets = true
		case strings.HasSuffix(r.Type, relSharedStrings):
			sharedStrings = true
		default:
			// Only parts every workbook needs are checked in depth.
			if _, ok := parts[target]; !ok {
				return errors.NewIntegrityError(p, target, "referenced part missing", nil)
			}
			continue
		}
		if err := check(target); err != nil {
			return err
		}
	}
	if !styles {
		return errors.NewIntegrityError(p, wbRelsPart, "no styles part", nil)
	}
	if !sheets {
		return errors.NewIntegrityError(p, wbRelsPart, "no worksheet", nil)
	}
	if sharedRefs && !sharedStrings {
		return errors.NewIntegrityError(p, path.Join(dir, sharedStringsPart), "shared strings part missing", nil)
	}
	return nil
}

func readRels(parts map[string]*zip.File, p, name string) (*relationships, error) {
	f, ok := parts[name]
	if !ok {
		return nil, errors.NewIntegrityError(p, name, "part missing", nil)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, errors.NewIntegrityError(p, name, "unreadable", err)
	}
	defer func() { _ = rc.Close() }()

	var rels relationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, errors.NewIntegrityError(p, name, "malformed XML", err)
	}
	return &rels, nil
}

// wellFormed reads every token of an XML part and reports whether it
// holds a cell of type "s", an index into the shared strings.
func wellFormed(f *zip.File) (bool, error) {
	rc, err := f.Open()
	if err != nil {
		return false, err
	}
	defer func() { _ = rc.Close() }()

	dec := xml.NewDecoder(rc)
	root, shared := false, false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		root = true
		if shared || se.Name.Local != "c" {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local == "t" && a.Value == "s" {
				shared = true
			}
		}
	}
	if !root {
		return false, fmt.Errorf("no root element")
	}
	return shared, nil
}

// ArchiveCheck tests the package with "unzip -tqq". A corrupt archive is an
// IntegrityError; a missing tool, a timeout or a failure to run is returned
// as is so the caller can fall back.
func ArchiveCheck(ctx context.Context, r proc.Runner, p string, timeout time.Duration) error {
	_, err := r.Run(ctx, proc.Command{Name: "unzip", Args: []string{"-tqq", p}, Timeout: timeout})
	var pe *errors.ProcessError
	if errors.As(err, &pe) {
		return errors.NewIntegrityError(p, "", "unzip -tqq failed: "+strings.TrimSpace(pe.Output), err)
	}
	return err
}
