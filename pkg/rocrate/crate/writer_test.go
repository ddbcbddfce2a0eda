package crate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/diwise/ro-crate/pkg/rocrate/types/entities"
)

func TestWriteFolderCopiesContent(t *testing.T) {
	is, ctx, dir := testSetup(t)

	source := t.TempDir()
	writeFile(t, source, "measurements.csv", "a,b\n1,2\n")
	writeFile(t, source, "images/a.png", "png")

	c := newTestCrate(t, entities.Name("written"))

	file, err := entities.NewFile("", entities.LocalContent(filepath.Join(source, "measurements.csv")))
	is.NoErr(err)
	images, err := entities.NewDataset("", entities.LocalContent(filepath.Join(source, "images")))
	is.NoErr(err)
	remote, err := entities.NewFile("", entities.RemoteContent("https://example.org/remote.csv"))
	is.NoErr(err)
	empty, err := entities.NewDataset("empty/")
	is.NoErr(err)

	is.NoErr(c.AddDataEntity(file))
	is.NoErr(c.AddDataEntity(images))
	is.NoErr(c.AddDataEntity(remote))
	is.NoErr(c.AddDataEntity(empty))
	c.AddUntrackedFile(fstest.MapFS{"notes.txt": &fstest.MapFile{Data: []byte("milk")}}, "notes.txt")

	is.NoErr(NewWriter().WriteFolder(ctx, c, dir))

	b, err := os.ReadFile(filepath.Join(dir, "measurements.csv"))
	is.NoErr(err)
	is.Equal(string(b), "a,b\n1,2\n")

	_, err = os.Stat(filepath.Join(dir, "images", "a.png"))
	is.NoErr(err)

	info, err := os.Stat(filepath.Join(dir, "empty"))
	is.NoErr(err)
	is.True(info.IsDir())

	b, err = os.ReadFile(filepath.Join(dir, "notes.txt"))
	is.NoErr(err)
	is.Equal(string(b), "milk")

	metadata, err := os.ReadFile(filepath.Join(dir, "ro-crate-metadata.json"))
	is.NoErr(err)
	is.True(json.Valid(metadata))
	is.True(bytes.Contains(metadata, []byte("\n  \"@graph\": [")))

	read, err := NewReader().ReadFolder(ctx, dir)
	is.NoErr(err)
	is.True(read.EntityByID("measurements.csv").Content() != nil)
	is.True(read.EntityByID("images/").Content().IsDir())
	is.Equal(len(read.UntrackedFiles()), 1)
}

func TestWriteZipRoundTrip(t *testing.T) {
	is, ctx, dir := testSetup(t)

	writeFile(t, dir, "source/ro-crate-metadata.json", folderCrate)
	writeFile(t, dir, "source/file1.csv", "a,b\n1,2\n")
	writeFile(t, dir, "source/ro-crate-preview.html", "<html></html>")

	c, err := NewReader().ReadFolder(ctx, filepath.Join(dir, "source"))
	is.NoErr(err)

	zipPath := filepath.Join(dir, "crate.zip")
	out, err := os.Create(zipPath)
	is.NoErr(err)
	is.NoErr(NewWriter().WriteZip(ctx, c, out))
	is.NoErr(out.Close())

	read, err := NewReader().ReadZip(ctx, zipPath)
	is.NoErr(err)

	is.True(read.EntityByID("file1.csv").Content() != nil)
	is.Equal(len(read.UntrackedFiles()), 0)

	first, err := json.Marshal(c)
	is.NoErr(err)
	second, err := json.Marshal(read)
	is.NoErr(err)
	is.Equal(string(first), string(second))
}

func TestDestinationRejectsPathsOutsideTheCrate(t *testing.T) {
	for id, expected := range map[string]string{
		"data.csv":                "data.csv",
		"./data/a.csv":            "data/a.csv",
		"my%20file.txt":           "my file.txt",
		"results/":                "results",
		"../escape.txt":           "",
		"/etc/passwd":             "",
		"https://example.org/a":   "",
		"ro-crate-metadata.json":  "",
		"ro-crate-preview_files/": "",
	} {
		name, ok := destination(id)
		if name != expected || ok != (expected != "") {
			t.Errorf("destination(%q) = %q, %v", id, name, ok)
		}
	}
}
