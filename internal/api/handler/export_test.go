package handler

// XLSXContentTypeForTest exposes xlsxContentType to the external test package.
const XLSXContentTypeForTest = xlsxContentType
