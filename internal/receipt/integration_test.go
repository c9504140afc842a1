package receipt_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/ventas-extractor/internal/extraction"
	"github.com/zombor/ventas-extractor/internal/receipt"
)

const closingReport = `HOTEL FETICHE
FECHA 05-03-2024
HORA 23:15:42
3 RATO-FETICHE 45.000
1 AMANECIDA-MANSION 60.000
2 /JACUZZI 40.000
TOTAL POR HABITACIONES $ 105.000
TOTAL POR PRODUCTOS $ 40.000
VENTA TOTAL 145.000
`

var _ = Describe("Integration", func() {
	var (
		tempDir     string
		stagingPath string
		db          receipt.DB
		store       receipt.Storage
		server      *receipt.Server
		ghServer    *ghttp.Server
	)

	BeforeEach(func() {
		var err error
		tempDir = GinkgoT().TempDir()
		stagingPath = filepath.Join(tempDir, "staging")

		db, err = receipt.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = receipt.NewLocalStorage(stagingPath)
		Expect(err).NotTo(HaveOccurred())

		service := receipt.NewService(db, extraction.NewEngine(nil), store)
		server = receipt.NewServer(service, receipt.BasicAuth{})

		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	It("should extract an uploaded report, keep it and export it", func() {
		// upload, fetch, export
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "cierre-05-03.txt")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte(closingReport))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/procesar", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("application/json"))

		var uploaded receipt.Extraction
		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(respBody, &uploaded)).To(Succeed())

		Expect(uploaded.Error).To(BeNil())
		fields := uploaded.Record.Map()
		Expect(fields).To(HaveKeyWithValue("archivo", "cierre-05-03.txt"))
		Expect(fields).To(HaveKeyWithValue("fecha", "05-03-2024"))
		Expect(fields).To(HaveKeyWithValue("hora", "23:15:42"))
		Expect(fields).To(HaveKeyWithValue("total_habitaciones", 105000))
		Expect(fields).To(HaveKeyWithValue("total_productos", 40000))
		Expect(fields).To(HaveKeyWithValue("total_ventas", 145000))
		Expect(fields).To(HaveKeyWithValue("R_FETICH_cant", 3))
		Expect(fields).To(HaveKeyWithValue("R_FETICH_valor", 45000))
		Expect(fields).To(HaveKeyWithValue("A_MANSION_cant", 1))
		Expect(fields).To(HaveKeyWithValue("JACUZZI_valor", 40000))
		Expect(fields).To(HaveKeyWithValue("R_ROJA_cant", 0))

		// staged upload is gone once extracted
		entries, err := os.ReadDir(stagingPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())

		getResp, err := http.Get(ghServer.URL() + "/api/extractions/" + uploaded.ID)
		Expect(err).NotTo(HaveOccurred())
		defer getResp.Body.Close()
		Expect(getResp.StatusCode).To(Equal(http.StatusOK))

		var stored receipt.Extraction
		Expect(json.NewDecoder(getResp.Body).Decode(&stored)).To(Succeed())
		Expect(stored.Record).To(Equal(uploaded.Record))

		exportResp, err := http.Get(ghServer.URL() + "/api/extractions/export.xlsx")
		Expect(err).NotTo(HaveOccurred())
		defer exportResp.Body.Close()
		Expect(exportResp.StatusCode).To(Equal(http.StatusOK))
		Expect(exportResp.Header.Get("Content-Disposition")).To(ContainSubstring("ventas.xlsx"))
	})
})
