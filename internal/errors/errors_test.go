package errors

import (
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Structured Errors", func() {
	Describe("AppError", func() {
		Context("basic error creation", func() {
			It("should create error with correct properties", func() {
				err := New(ErrorTypeInputInvalid, "query must not be empty")

				Expect(err.Type).To(Equal(ErrorTypeInputInvalid))
				Expect(err.Message).To(Equal("query must not be empty"))
				Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(err.Details).To(BeEmpty())
				Expect(err.Cause).To(BeNil())
			})

			It("should implement error interface correctly", func() {
				err := New(ErrorTypeInputInvalid, "query must not be empty")

				Expect(err.Error()).To(Equal("input_invalid: query must not be empty"))
			})

			It("should include details in error string when present", func() {
				err := New(ErrorTypeInputInvalid, "query must not be empty").WithDetails("query length 0")

				Expect(err.Error()).To(Equal("input_invalid: query must not be empty (query length 0)"))
			})
		})

		Context("error wrapping", func() {
			It("should wrap underlying error", func() {
				originalErr := errors.New("pool exhausted")
				wrappedErr := Wrap(originalErr, ErrorTypeSearchUnavailable, "member store query failed")

				Expect(wrappedErr.Type).To(Equal(ErrorTypeSearchUnavailable))
				Expect(wrappedErr.Message).To(Equal("member store query failed"))
				Expect(wrappedErr.Cause).To(Equal(originalErr))
				Expect(wrappedErr.Unwrap()).To(Equal(originalErr))
			})

			It("should format wrapped error with arguments", func() {
				originalErr := errors.New("connection refused")
				wrappedErr := Wrapf(originalErr, ErrorTypeSearchUnavailable, "failed to reach %s:%d", "member-store", 5432)

				Expect(wrappedErr.Message).To(Equal("failed to reach member-store:5432"))
				Expect(wrappedErr.Cause).To(Equal(originalErr))
			})
		})

		Context("adding details", func() {
			It("should add details to existing error", func() {
				err := New(ErrorTypeAllProvidersUnavailable, "no LLM provider could serve the request")
				detailedErr := err.WithDetails("3 providers tried")

				Expect(detailedErr.Details).To(Equal("3 providers tried"))
				Expect(detailedErr).To(BeIdenticalTo(err))
			})

			It("should add formatted details", func() {
				err := New(ErrorTypeProviderBusy, "provider queue full")
				detailedErr := err.WithDetailsf("provider %s, queue depth %d", "anthropic", 32)

				Expect(detailedErr.Details).To(Equal("provider anthropic, queue depth 32"))
			})
		})
	})

	Describe("HTTP Status Code Mapping", func() {
		It("should map error types to correct HTTP status codes", func() {
			testCases := []struct {
				errorType  ErrorType
				statusCode int
			}{
				{ErrorTypeInputInvalid, http.StatusBadRequest},
				{ErrorTypeExtractionDegraded, http.StatusOK},
				{ErrorTypeProviderBusy, http.StatusServiceUnavailable},
				{ErrorTypeAllProvidersUnavailable, http.StatusServiceUnavailable},
				{ErrorTypeEmbeddingUnavailable, http.StatusOK},
				{ErrorTypeSearchUnavailable, http.StatusServiceUnavailable},
				{ErrorTypeTimeout, http.StatusGatewayTimeout},
				{ErrorTypeInternal, http.StatusInternalServerError},
			}

			for _, tc := range testCases {
				err := New(tc.errorType, "test message")
				Expect(err.StatusCode).To(Equal(tc.statusCode))
			}
		})
	})

	Describe("Predefined Error Constructors", func() {
		It("should create input-invalid error", func() {
			err := NewInputInvalidError("query exceeds maximum length")

			Expect(err.Type).To(Equal(ErrorTypeInputInvalid))
			Expect(err.Message).To(Equal("query exceeds maximum length"))
		})

		It("should create search-unavailable error", func() {
			originalErr := errors.New("connection lost")
			err := NewSearchUnavailableError("candidate lookup", originalErr)

			Expect(err.Type).To(Equal(ErrorTypeSearchUnavailable))
			Expect(err.Message).To(ContainSubstring("member store operation failed: candidate lookup"))
			Expect(err.Cause).To(Equal(originalErr))
		})

		It("should create all-providers-unavailable error", func() {
			err := NewAllProvidersUnavailableError()

			Expect(err.Type).To(Equal(ErrorTypeAllProvidersUnavailable))
			Expect(err.Message).To(Equal("no LLM provider is currently available"))
		})

		It("should create timeout error", func() {
			err := NewTimeoutError("semantic search")

			Expect(err.Type).To(Equal(ErrorTypeTimeout))
			Expect(err.Message).To(Equal("operation timed out: semantic search"))
		})
	})

	Describe("Error Type Checking", func() {
		It("should correctly identify error types", func() {
			inputErr := NewInputInvalidError("test")
			timeoutErr := NewTimeoutError("test")

			Expect(IsType(inputErr, ErrorTypeInputInvalid)).To(BeTrue())
			Expect(IsType(inputErr, ErrorTypeTimeout)).To(BeFalse())
			Expect(IsType(timeoutErr, ErrorTypeTimeout)).To(BeTrue())
		})

		It("should handle non-AppError types", func() {
			regularErr := errors.New("regular error")

			Expect(IsType(regularErr, ErrorTypeInputInvalid)).To(BeFalse())
			Expect(GetType(regularErr)).To(Equal(ErrorTypeInternal))
		})

		It("should get correct status codes", func() {
			inputErr := NewInputInvalidError("test")
			regularErr := errors.New("regular error")

			Expect(GetStatusCode(inputErr)).To(Equal(http.StatusBadRequest))
			Expect(GetStatusCode(regularErr)).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Safe Error Messages", func() {
		It("should return safe messages for different error types", func() {
			testCases := []struct {
				errorType    ErrorType
				expectedSafe string
			}{
				{ErrorTypeInputInvalid, ""}, // input errors are passed through verbatim
				{ErrorTypeAllProvidersUnavailable, ErrorMessages.AllProvidersUnavailable},
				{ErrorTypeSearchUnavailable, ErrorMessages.SearchUnavailable},
				{ErrorTypeTimeout, ErrorMessages.OperationTimeout},
				{ErrorTypeInternal, "An internal error occurred"},
			}

			for _, tc := range testCases {
				var err error
				switch tc.errorType {
				case ErrorTypeInputInvalid:
					err = NewInputInvalidError("specific validation message")
					Expect(SafeErrorMessage(err)).To(Equal("specific validation message"))
					continue
				default:
					err = New(tc.errorType, "internal details")
				}

				Expect(SafeErrorMessage(err)).To(Equal(tc.expectedSafe))
			}
		})

		It("should return generic message for regular errors", func() {
			regularErr := errors.New("internal panic")
			safeMsg := SafeErrorMessage(regularErr)

			Expect(safeMsg).To(Equal("An unexpected error occurred"))
		})
	})

	Describe("Logging Fields", func() {
		It("should generate structured logging fields", func() {
			originalErr := errors.New("connection failed")
			appErr := Wrapf(originalErr, ErrorTypeSearchUnavailable, "query failed").
				WithDetails("store: members")

			fields := LogFields(appErr)

			Expect(fields).To(HaveKey("error"))
			Expect(fields).To(HaveKey("error_type"))
			Expect(fields).To(HaveKey("status_code"))
			Expect(fields).To(HaveKey("error_details"))
			Expect(fields).To(HaveKey("underlying_error"))

			Expect(fields["error_type"]).To(Equal("search_unavailable"))
			Expect(fields["status_code"]).To(Equal(http.StatusServiceUnavailable))
			Expect(fields["error_details"]).To(Equal("store: members"))
			Expect(fields["underlying_error"]).To(Equal("connection failed"))
		})

		It("should handle simple AppError without details", func() {
			err := NewInputInvalidError("invalid input")
			fields := LogFields(err)

			Expect(fields).To(HaveKey("error"))
			Expect(fields).To(HaveKey("error_type"))
			Expect(fields).To(HaveKey("status_code"))
			Expect(fields).NotTo(HaveKey("error_details"))
			Expect(fields).NotTo(HaveKey("underlying_error"))
		})

		It("should handle regular errors", func() {
			err := errors.New("regular error")
			fields := LogFields(err)

			Expect(fields).To(HaveKey("error"))
			Expect(fields).NotTo(HaveKey("error_type"))
		})
	})

	Describe("Error Chaining", func() {
		It("should handle empty error list", func() {
			err := Chain()
			Expect(err).To(BeNil())
		})

		It("should handle single error", func() {
			originalErr := errors.New("single error")
			err := Chain(originalErr)

			Expect(err).To(Equal(originalErr))
		})

		It("should filter nil errors", func() {
			err1 := errors.New("error 1")
			err2 := errors.New("error 2")

			err := Chain(err1, nil, err2, nil)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("error 1"))
			Expect(err.Error()).To(ContainSubstring("error 2"))
		})

		It("should chain multiple errors", func() {
			err1 := errors.New("first error")
			err2 := errors.New("second error")
			err3 := errors.New("third error")

			chainedErr := Chain(err1, err2, err3)

			Expect(chainedErr).To(HaveOccurred())
			errMsg := chainedErr.Error()
			Expect(errMsg).To(ContainSubstring("first error"))
			Expect(errMsg).To(ContainSubstring("second error"))
			Expect(errMsg).To(ContainSubstring("third error"))
			Expect(errMsg).To(ContainSubstring(" -> "))
		})

		It("should return nil when all errors are nil", func() {
			err := Chain(nil, nil, nil)
			Expect(err).To(BeNil())
		})
	})

	Describe("Error Type Constants", func() {
		It("should have all expected error types defined", func() {
			expectedTypes := []ErrorType{
				ErrorTypeInputInvalid,
				ErrorTypeExtractionDegraded,
				ErrorTypeProviderBusy,
				ErrorTypeAllProvidersUnavailable,
				ErrorTypeEmbeddingUnavailable,
				ErrorTypeSearchUnavailable,
				ErrorTypeTimeout,
				ErrorTypeInternal,
			}

			for _, errorType := range expectedTypes {
				Expect(string(errorType)).NotTo(BeEmpty())
			}
		})
	})
})
