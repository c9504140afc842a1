package receipt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage *LocalStorage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Stage", func() {
		var (
			filename string
			body     string
			path     string
			err      error
		)

		BeforeEach(func() {
			filename = "cierre.txt"
			body = "FECHA 05-03-2024"
		})

		JustBeforeEach(func() {
			path, err = storage.Stage(filename, strings.NewReader(body))
		})

		When("staging succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should write the file inside the staging directory", func() {
				Expect(filepath.Dir(path)).To(Equal(tmpDir))
				Expect(path).To(BeAnExistingFile())
			})

			It("should keep the name and extension recognizable", func() {
				Expect(filepath.Base(path)).To(HavePrefix("cierre-"))
				Expect(path).To(HaveSuffix(".txt"))
			})

			It("should store the content", func() {
				data, readErr := os.ReadFile(path)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal(body))
			})
		})

		When("the same name is staged twice", func() {
			It("should use distinct files", func() {
				other, otherErr := storage.Stage(filename, strings.NewReader("other"))
				Expect(otherErr).NotTo(HaveOccurred())
				Expect(other).NotTo(Equal(path))
			})
		})

		When("the name tries to escape the directory", func() {
			BeforeEach(func() {
				filename = "../../etc/passwd"
			})

			It("should stay inside the staging directory", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(filepath.Dir(path)).To(Equal(tmpDir))
			})
		})

		When("the upload cannot be read", func() {
			It("returns the error and leaves nothing behind", func() {
				_, stageErr := storage.Stage("broken.txt", brokenReader{})
				Expect(stageErr).To(MatchError(ContainSubstring("writing staged file")))

				entries, readErr := os.ReadDir(tmpDir)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(1)) // only the file staged by JustBeforeEach
			})
		})
	})

	Describe("Read", func() {
		It("should return staged content", func() {
			path, err := storage.Stage("a.txt", strings.NewReader("content"))
			Expect(err).NotTo(HaveOccurred())
			data, err := storage.Read(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("content"))
		})

		It("returns the error for a missing file", func() {
			_, err := storage.Read(filepath.Join(tmpDir, "missing.txt"))
			Expect(err).To(MatchError(ContainSubstring("reading staged file")))
		})
	})

	Describe("Remove", func() {
		It("should delete the staged file", func() {
			path, err := storage.Stage("a.txt", strings.NewReader("content"))
			Expect(err).NotTo(HaveOccurred())
			Expect(storage.Remove(path)).To(Succeed())
			Expect(path).NotTo(BeAnExistingFile())
		})

		It("returns the error for a missing file", func() {
			err := storage.Remove(filepath.Join(tmpDir, "missing.txt"))
			Expect(err).To(MatchError(ContainSubstring("removing staged file")))
		})
	})

	Describe("NewLocalStorage", func() {
		It("should create a missing directory", func() {
			dir := filepath.Join(GinkgoT().TempDir(), "staging")
			_, err := NewLocalStorage(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(BeADirectory())
		})
	})
})

var _ = DescribeTable("sanitizeFilename",
	func(input, expected string) {
		Expect(sanitizeFilename(input)).To(Equal(expected))
	},
	Entry("plain name", "cierre.txt", "cierre.txt"),
	Entry("spaces and symbols", "cierre caja #1 (norte).txt", "cierrecaja1norte.txt"),
	Entry("path components", "../../etc/passwd", "passwd.txt"),
	Entry("empty name", "", "upload.txt"),
	Entry("long name", strings.Repeat("a", 80)+".txt", strings.Repeat("a", 50)+".txt"),
)
